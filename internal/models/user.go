package models

import "time"

// GroupModel is one of the fixed user groups (Admin, Member, Friend, Banned, Guest).
type GroupModel struct {
	Base
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`

	Users       []UserModel       `json:"users,omitempty"       gorm:"foreignKey:GroupID"`
	Permissions []PermissionModel `json:"permissions,omitempty" gorm:"foreignKey:GroupID"`
}

func (GroupModel) TableName() string { return "groups" }

// PermissionModel grants a named capability to a group.
type PermissionModel struct {
	Base
	GroupID     string `json:"-"    gorm:"index:idx_group_permission,unique;not null"`
	Name        string `json:"name" gorm:"index:idx_group_permission,unique;not null"`
	Description string `json:"description"`
}

func (PermissionModel) TableName() string { return "permissions" }

// UserModel represents a registered user.
type UserModel struct {
	Base
	Username       string      `json:"username" gorm:"uniqueIndex;not null"`
	Email          string      `json:"email"    gorm:"uniqueIndex;not null"`
	HashedPassword string      `json:"-"        gorm:"not null"`
	GroupID        string      `json:"group_id" gorm:"index;not null"`
	Group          *GroupModel `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	FullName       string      `json:"full_name"`
	Website        string      `json:"website"`
	Image          string      `json:"image"`
	Approved       bool        `json:"approved"  gorm:"default:true"`
	IsActive       bool        `json:"is_active" gorm:"default:true"`
	LastLoginTime  *time.Time  `json:"last_login_time"`
	LastLoginIP    string      `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }
