package models

// SettingType declares how a setting's raw text value must parse.
type SettingType string

const (
	SettingString  SettingType = "string"
	SettingNumber  SettingType = "number"
	SettingBoolean SettingType = "boolean"
	SettingJSON    SettingType = "json"
)

// SettingModel is a single named configuration value. Value must parse under
// Type; a row that does not is a data-integrity error at read time.
type SettingModel struct {
	Base
	Name        string      `json:"name"  gorm:"uniqueIndex;not null"`
	Value       string      `json:"value" gorm:"type:text;not null"`
	Type        SettingType `json:"type"  gorm:"default:'string'"`
	Description string      `json:"description"`
}

func (SettingModel) TableName() string { return "settings" }

// ThemeModel is an installed theme. At most one row has IsActive set; the
// activation write path enforces that, not the schema.
type ThemeModel struct {
	Base
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description" gorm:"not null"`
	IsActive    bool   `json:"is_active" gorm:"default:false"`
}

func (ThemeModel) TableName() string { return "themes" }

// ModuleModel is an installed site module (extension).
type ModuleModel struct {
	Base
	Name         string `json:"name" gorm:"uniqueIndex;not null"`
	Description  string `json:"description" gorm:"not null"`
	Status       string `json:"status" gorm:"default:'enabled'"`
	CanDisable   bool   `json:"can_disable" gorm:"default:true"`
	CanUninstall bool   `json:"can_uninstall" gorm:"default:true"`
	Conflicts    string `json:"conflicts,omitempty"`
}

func (ModuleModel) TableName() string { return "modules" }

// FeatherModel is an installed post-type handler.
type FeatherModel struct {
	Base
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description" gorm:"not null"`
	Status      string `json:"status" gorm:"default:'enabled'"`
	CanDisable  bool   `json:"can_disable" gorm:"default:true"`
}

func (FeatherModel) TableName() string { return "feathers" }
