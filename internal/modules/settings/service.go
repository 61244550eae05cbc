package settings

import (
	"errors"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/pkg/apierror"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sensitiveSettings is the fixed set of keys hidden from callers without
// "Change Settings". Redaction removes the key entirely, never nulls it.
var sensitiveSettings = map[string]struct{}{
	"admin_email":          {},
	"smtp_host":            {},
	"smtp_port":            {},
	"smtp_username":        {},
	"smtp_password":        {},
	"smtp_encryption":      {},
	"database_url":         {},
	"secret_key":           {},
	"jwt_secret":           {},
	"google_client_id":     {},
	"google_client_secret": {},
	"api_keys":             {},
}

func IsSensitive(name string) bool {
	_, ok := sensitiveSettings[name]
	return ok
}

// wellKnownKeys are assembled explicitly with defaults and therefore skipped
// when the leftover settings are appended to the response.
var wellKnownKeys = map[string]struct{}{
	"site_title": {}, "site_description": {}, "site_url": {}, "timezone": {}, "locale": {},
	"posts_per_page": {}, "enable_registration": {}, "enable_comments": {},
	"enable_trackbacks": {}, "enable_webmentions": {}, "enable_feeds": {},
	"enable_search": {}, "maintenance_mode": {}, "admin_email": {},
	"smtp_host": {}, "smtp_port": {}, "smtp_username": {}, "smtp_password": {},
	"smtp_encryption": {}, "social_links": {}, "seo_settings": {},
}

// Service aggregates settings, themes, modules, and feathers into the
// unified config response, redacted per caller.
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Get returns the unified config object for the caller. Sensitive keys are
// absent, not null, when the caller lacks "Change Settings". A row whose
// value fails to parse under its declared type is logged and omitted without
// failing the response.
func (s *Service) Get(grant rbac.Grant) (map[string]interface{}, error) {
	var rows []models.SettingModel
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "failed to load settings", err)
	}

	values := map[string]interface{}{}
	for _, row := range rows {
		parsed, err := Coerce(row.Value, row.Type)
		if err != nil {
			ierr := apierror.Wrap(apierror.KindDataIntegrity,
				"stored setting does not parse under declared type", err)
			s.log.Error("skipping corrupt setting",
				zap.String("name", row.Name),
				zap.String("type", string(row.Type)),
				zap.Error(ierr),
			)
			continue
		}
		values[row.Name] = parsed
	}

	seesSensitive := rbac.Decide(grant, rbac.Check{Sensitive: true}) != rbac.Denied
	if !seesSensitive {
		for name := range sensitiveSettings {
			delete(values, name)
		}
	}

	out := map[string]interface{}{
		"site_title":       pick(values, "site_title", "Chyrp Lite"),
		"site_description": pick(values, "site_description", ""),
		"site_url":         pick(values, "site_url", ""),
		"timezone":         pick(values, "timezone", "UTC"),
		"locale":           pick(values, "locale", "en"),

		"posts_per_page":      pick(values, "posts_per_page", 10),
		"enable_registration": pick(values, "enable_registration", true),
		"enable_comments":     pick(values, "enable_comments", true),
		"enable_trackbacks":   pick(values, "enable_trackbacks", false),
		"enable_webmentions":  pick(values, "enable_webmentions", false),
		"enable_feeds":        pick(values, "enable_feeds", true),
		"enable_search":       pick(values, "enable_search", true),
		"maintenance_mode":    pick(values, "maintenance_mode", false),

		"social_links": pick(values, "social_links", map[string]interface{}{}),
		"seo_settings": pick(values, "seo_settings", map[string]interface{}{}),
	}

	if seesSensitive {
		out["admin_email"] = pick(values, "admin_email", "")
		out["smtp_settings"] = map[string]interface{}{
			"host":       pick(values, "smtp_host", ""),
			"port":       pick(values, "smtp_port", 587),
			"username":   pick(values, "smtp_username", ""),
			"password":   pick(values, "smtp_password", ""),
			"encryption": pick(values, "smtp_encryption", "tls"),
		}
	}

	themes, err := s.listThemes()
	if err != nil {
		return nil, err
	}
	out["themes"] = themes
	out["theme"] = activeThemeName(themes)

	var modules []models.ModuleModel
	if err := s.db.Order("name").Find(&modules).Error; err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "failed to load modules", err)
	}
	out["modules"] = modules

	var feathers []models.FeatherModel
	if err := s.db.Order("name").Find(&feathers).Error; err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "failed to load feathers", err)
	}
	out["feathers"] = feathers

	for name, value := range values {
		if _, known := wellKnownKeys[name]; known {
			continue
		}
		out[name] = value
	}

	return out, nil
}

// Update applies a partial settings update. Only keys present in the payload
// change; each is re-read and re-validated against its declared type before
// the write so a concurrent update to unrelated keys is never clobbered.
// The keys commit together: one invalid key rolls back the whole request.
// Returns the unified config re-run through the caller's own redaction.
func (s *Service) Update(grant rbac.Grant, partial map[string]interface{}) (map[string]interface{}, error) {
	if rbac.Decide(grant, rbac.Check{Capability: rbac.PermChangeSettings}) == rbac.Denied {
		return nil, apierror.New(apierror.KindPermission, "forbidden")
	}
	if len(partial) == 0 {
		return nil, apierror.Validation("settings", "at least one setting is required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for name, value := range partial {
			stored, inferredType, err := Encode(value)
			if err != nil {
				return apierror.Validation(name, "value cannot be serialized")
			}

			typ := inferredType
			var existing models.SettingModel
			err = tx.Where("name = ?", name).First(&existing).Error
			switch {
			case err == nil:
				// Keep the declared type of an existing row.
				typ = existing.Type
				if err := Revalidate(stored, typ); err != nil {
					return apierror.Validation(name, err.Error())
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
			default:
				return apierror.Wrap(apierror.KindInternal, "failed to read setting", err)
			}

			row := models.SettingModel{Name: name, Value: stored, Type: typ}
			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "type"}),
			}).Create(&row).Error
			if err != nil {
				return apierror.Wrap(apierror.KindInternal, "failed to persist setting", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(grant)
}

func pick(values map[string]interface{}, name string, fallback interface{}) interface{} {
	if v, ok := values[name]; ok {
		return v
	}
	return fallback
}

func activeThemeName(themes []models.ThemeModel) string {
	for _, t := range themes {
		if t.IsActive {
			return t.Name
		}
	}
	return "default"
}

func (s *Service) listThemes() ([]models.ThemeModel, error) {
	var themes []models.ThemeModel
	if err := s.db.Order("name").Find(&themes).Error; err != nil {
		return nil, apierror.Wrap(apierror.KindInternal, "failed to load themes", err)
	}
	return themes, nil
}
