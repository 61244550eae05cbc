package settings

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chyrplite/core/internal/models"
	"github.com/chyrplite/core/internal/modules/rbac"
	"github.com/chyrplite/core/internal/pkg/apierror"
)

func testService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.SettingModel{}, &models.ThemeModel{},
		&models.ModuleModel{}, &models.FeatherModel{},
	))
	return NewService(db, zap.NewNop())
}

func seedSetting(t *testing.T, s *Service, name, value string, typ models.SettingType) {
	t.Helper()
	require.NoError(t, s.db.Create(&models.SettingModel{Name: name, Value: value, Type: typ}).Error)
}

func adminGrant() rbac.Grant {
	return rbac.Grant{UserID: "u1", Tier: rbac.TierAdmin, Perms: rbac.PermissionsForTier(rbac.TierAdmin)}
}

func guestGrant() rbac.Grant {
	return rbac.Grant{Tier: rbac.TierGuest, Perms: rbac.PermissionsForTier(rbac.TierGuest)}
}

func TestGetRedactsSensitiveKeys(t *testing.T) {
	s := testService(t)
	seedSetting(t, s, "site_title", "My Site", models.SettingString)
	seedSetting(t, s, "smtp_host", "mail.example.com", models.SettingString)
	seedSetting(t, s, "admin_email", "admin@example.com", models.SettingString)
	seedSetting(t, s, "jwt_secret", "hunter2", models.SettingString)

	got, err := s.Get(guestGrant())
	require.NoError(t, err)
	assert.Equal(t, "My Site", got["site_title"])
	for _, key := range []string{"admin_email", "smtp_settings", "smtp_host", "jwt_secret"} {
		_, present := got[key]
		assert.False(t, present, key)
	}

	got, err = s.Get(adminGrant())
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", got["admin_email"])
	assert.Equal(t, "hunter2", got["jwt_secret"])
	smtp, ok := got["smtp_settings"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "mail.example.com", smtp["host"])
}

func TestGetOmitsUnparsableRow(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := testService(t)
	s.log = zap.New(core)
	seedSetting(t, s, "posts_per_page", "lots", models.SettingNumber)

	got, err := s.Get(adminGrant())
	require.NoError(t, err)
	assert.Equal(t, 10, got["posts_per_page"]) // default, stored row skipped

	require.Equal(t, 1, logs.Len())
	var logged error
	for _, field := range logs.All()[0].Context {
		if field.Type == zapcore.ErrorType {
			logged = field.Interface.(error)
		}
	}
	var ae *apierror.Error
	require.ErrorAs(t, logged, &ae)
	assert.Equal(t, apierror.KindDataIntegrity, ae.Kind)
}

func TestUpdatePersistsAndRedacts(t *testing.T) {
	s := testService(t)

	got, err := s.Update(adminGrant(), map[string]interface{}{
		"site_title":      "Renamed",
		"enable_comments": false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got["site_title"])
	assert.Equal(t, false, got["enable_comments"])

	_, err = s.Update(guestGrant(), map[string]interface{}{"site_title": "nope"})
	var ae *apierror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierror.KindPermission, ae.Kind)
}

func TestUpdateRollsBackOnInvalidKey(t *testing.T) {
	s := testService(t)
	seedSetting(t, s, "posts_per_page", "10", models.SettingNumber)

	_, err := s.Update(adminGrant(), map[string]interface{}{
		"site_title":     "Half Applied",
		"posts_per_page": "not-a-number",
	})
	var ae *apierror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierror.KindValidation, ae.Kind)

	var count int64
	require.NoError(t, s.db.Model(&models.SettingModel{}).Where("name = ?", "site_title").Count(&count).Error)
	assert.Zero(t, count)

	var row models.SettingModel
	require.NoError(t, s.db.Where("name = ?", "posts_per_page").First(&row).Error)
	assert.Equal(t, "10", row.Value)
}
