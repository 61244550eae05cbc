package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chyrplite/core/internal/models"
)

func TestCoerceBoolean(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "1", "yes", "Yes", "on", " ON "} {
		got, err := Coerce(v, models.SettingBoolean)
		require.NoError(t, err, v)
		assert.Equal(t, true, got, v)
	}
	for _, v := range []string{"false", "0", "no", "off", "", "2", "truthy"} {
		got, err := Coerce(v, models.SettingBoolean)
		require.NoError(t, err, v)
		assert.Equal(t, false, got, v)
	}
}

func TestCoerceNumber(t *testing.T) {
	got, err := Coerce("42", models.SettingNumber)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = Coerce("3.5", models.SettingNumber)
	require.NoError(t, err)
	assert.Equal(t, 3.5, got)

	_, err = Coerce("ten", models.SettingNumber)
	assert.Error(t, err)
}

func TestCoerceJSONFallsBackToRawString(t *testing.T) {
	got, err := Coerce(`{"a":1}`, models.SettingJSON)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, got)

	// Broken JSON degrades to the raw string instead of failing.
	got, err = Coerce(`{"a":`, models.SettingJSON)
	require.NoError(t, err)
	assert.Equal(t, `{"a":`, got)
}

func TestCoerceString(t *testing.T) {
	got, err := Coerce("hello", models.SettingString)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestEncode(t *testing.T) {
	tests := []struct {
		in       interface{}
		wantVal  string
		wantType models.SettingType
	}{
		{true, "true", models.SettingBoolean},
		{false, "false", models.SettingBoolean},
		{float64(10), "10", models.SettingNumber},
		{2.5, "2.5", models.SettingNumber},
		{"text", "text", models.SettingString},
		{nil, "", models.SettingString},
		{map[string]interface{}{"k": "v"}, `{"k":"v"}`, models.SettingJSON},
	}
	for _, tc := range tests {
		val, typ, err := Encode(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.wantVal, val)
		assert.Equal(t, tc.wantType, typ)
	}
}

func TestRevalidate(t *testing.T) {
	assert.NoError(t, Revalidate("10", models.SettingNumber))
	assert.NoError(t, Revalidate("1.25", models.SettingNumber))
	assert.Error(t, Revalidate("ten", models.SettingNumber))

	assert.NoError(t, Revalidate(`[1,2]`, models.SettingJSON))
	assert.Error(t, Revalidate(`[1,`, models.SettingJSON))

	// Booleans and strings accept anything in stored form.
	assert.NoError(t, Revalidate("whatever", models.SettingBoolean))
	assert.NoError(t, Revalidate("whatever", models.SettingString))
}

func TestSensitiveKeySet(t *testing.T) {
	for _, key := range []string{"smtp_password", "jwt_secret", "admin_email", "api_keys"} {
		assert.True(t, IsSensitive(key), key)
	}
	assert.False(t, IsSensitive("site_title"))
	assert.False(t, IsSensitive("posts_per_page"))
}
