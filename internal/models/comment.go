package models

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentSpam     CommentStatus = "spam"
	CommentDenied   CommentStatus = "denied"
)

// CommentModel is a threaded comment on a post. Replies reference their
// parent; deleting a parent cascades to its children.
type CommentModel struct {
	Base
	PostID   string         `json:"post_id" gorm:"index;not null"`
	Post     *PostModel     `json:"post,omitempty" gorm:"foreignKey:PostID"`
	UserID   *string        `json:"user_id" gorm:"index"`
	User     *UserModel     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ParentID *string        `json:"parent_id" gorm:"index"`
	Children []CommentModel `json:"children,omitempty" gorm:"foreignKey:ParentID"`

	Body      string        `json:"body" gorm:"type:text;not null"`
	Author    string        `json:"author"`
	Mail      string        `json:"mail"`
	URL       string        `json:"url"`
	IP        string        `json:"ip"`
	UserAgent string        `json:"user_agent" gorm:"type:varchar(512)"`
	Status    CommentStatus `json:"status" gorm:"not null;default:'pending';index"`
}

func (CommentModel) TableName() string { return "comments" }
