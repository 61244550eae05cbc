package models

// UploadKind is the stored media category of an upload.
type UploadKind string

const (
	UploadImage   UploadKind = "image"
	UploadVideo   UploadKind = "video"
	UploadAudio   UploadKind = "audio"
	UploadCaption UploadKind = "caption"
	UploadFile    UploadKind = "file"
)

// UploadModel records a stored blob. Once attached to a post it is owned by
// that post; rows with a NULL post_id are orphans owned by the uploader.
type UploadModel struct {
	Base
	URL      string     `json:"url"  gorm:"not null"`
	Key      string     `json:"-"    gorm:"index"` // blob store object key
	UserID   string     `json:"user_id" gorm:"index;not null"`
	PostID   *string    `json:"post_id" gorm:"index"`
	Type     UploadKind `json:"type" gorm:"not null"`
	Size     int64      `json:"size" gorm:"not null"`
	Name     string     `json:"name" gorm:"not null"`
	MimeType string     `json:"mime_type"`
	AltText  string     `json:"alt_text"`
}

func (UploadModel) TableName() string { return "uploads" }
