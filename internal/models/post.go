package models

import "time"

// PostType enumerates the content variants ("feathers") a post can take.
type PostType string

const (
	PostTypeText  PostType = "text"
	PostTypePhoto PostType = "photo"
	PostTypeVideo PostType = "video"
	PostTypeAudio PostType = "audio"
	PostTypeQuote PostType = "quote"
	PostTypeLink  PostType = "link"
	PostTypeFile  PostType = "file"
)

// PostStatus is a lifecycle state or a group-named visibility floor.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublic    PostStatus = "public"
	StatusPrivate   PostStatus = "private"
	StatusScheduled PostStatus = "scheduled"
	StatusOpen      PostStatus = "open" // legacy alias of public
	StatusAdmin     PostStatus = "admin"
	StatusMember    PostStatus = "member"
	StatusFriend    PostStatus = "friend"
	StatusGuest     PostStatus = "guest"
	StatusBanned    PostStatus = "banned"
)

// PostModel is a content item. Only the columns belonging to its Type are
// meaningful; the rest stay NULL.
type PostModel struct {
	Base
	Type       PostType       `json:"type"  gorm:"not null;index"`
	Title      string         `json:"title" gorm:"not null"`
	URL        string         `json:"url"   gorm:"uniqueIndex;not null"`
	UserID     string         `json:"user_id" gorm:"index;not null"`
	User       *UserModel     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CategoryID *string        `json:"category_id" gorm:"index"`
	Category   *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`

	// Type-specific fields.
	Body        string `json:"body,omitempty"         gorm:"type:longtext"` // text
	Caption     string `json:"caption,omitempty"      gorm:"type:text"`     // photo
	AltText     string `json:"alt_text,omitempty"`                          // photo
	Description string `json:"description,omitempty"  gorm:"type:text"`     // video | audio | file
	Source      string `json:"source,omitempty"`                            // video | audio
	Quote       string `json:"quote,omitempty"        gorm:"type:text"`     // quote
	QuoteSource string `json:"quote_source,omitempty"`                      // quote
	LinkURL     string `json:"link_url,omitempty"`                          // link
	Thumbnail   string `json:"thumbnail,omitempty"`

	Attributes *PostAttributesModel `json:"attributes,omitempty" gorm:"foreignKey:PostID"`
	Uploads    []UploadModel        `json:"uploads,omitempty"    gorm:"foreignKey:PostID"`
	Tags       []TagModel           `json:"tags,omitempty"       gorm:"foreignKey:PostID"`
	Comments   []CommentModel       `json:"comments,omitempty"   gorm:"foreignKey:PostID"`
}

func (PostModel) TableName() string { return "posts" }

// PostAttributesModel carries cross-type metadata, 1:1 with a post.
type PostAttributesModel struct {
	Base
	PostID        string     `json:"-"      gorm:"uniqueIndex;not null"`
	Status        PostStatus `json:"status" gorm:"not null;default:'draft';index"`
	Pinned        bool       `json:"pinned" gorm:"default:false"`
	Slug          string     `json:"slug"   gorm:"uniqueIndex;not null"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
	AllowComments bool       `json:"allow_comments" gorm:"default:true"`
	OriginalWork  bool       `json:"original_work"  gorm:"default:true"`
	RightsHolder  string     `json:"rights_holder"`
	License       string     `json:"license" gorm:"not null;default:'All Rights Reserved'"`
}

func (PostAttributesModel) TableName() string { return "post_attributes" }

// TagModel is a free-form label on a post, unique per post.
type TagModel struct {
	Base
	PostID string `json:"-"    gorm:"index:idx_post_tag,unique;not null"`
	UserID string `json:"-"    gorm:"index;not null"`
	Name   string `json:"name" gorm:"index:idx_post_tag,unique;not null"`
}

func (TagModel) TableName() string { return "tags" }
