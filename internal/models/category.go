package models

// CategoryModel groups posts. Owned by the user who created it; posts keep a
// nullable reference so deleting a category never deletes posts.
type CategoryModel struct {
	Base
	UserID       string `json:"user_id" gorm:"index;not null"`
	Name         string `json:"name"    gorm:"not null"`
	Slug         string `json:"slug"    gorm:"uniqueIndex;not null"`
	Description  string `json:"description"`
	IsListed     bool   `json:"is_listed" gorm:"default:true"`
	DisplayOrder int    `json:"display_order" gorm:"default:0"`

	Posts []PostModel `json:"posts,omitempty" gorm:"foreignKey:CategoryID"`
}

func (CategoryModel) TableName() string { return "categories" }
