package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/chyrplite/core/internal/models"
)

// Coerce parses a stored setting value under its declared type. A boolean
// never fails: any value outside the truthy set is false. A number that does
// not parse as int or float is a data-integrity failure. JSON that does not
// parse falls back to the raw string for that field alone.
func Coerce(value string, typ models.SettingType) (interface{}, error) {
	switch typ {
	case models.SettingBoolean:
		return isTruthy(value), nil
	case models.SettingNumber:
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f, nil
		}
		return nil, fmt.Errorf("value %q does not parse as number", value)
	case models.SettingJSON:
		var parsed interface{}
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			return value, nil
		}
		return parsed, nil
	default:
		return value, nil
	}
}

var truthyValues = map[string]struct{}{
	"true": {}, "1": {}, "yes": {}, "on": {},
}

func isTruthy(value string) bool {
	_, ok := truthyValues[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// Encode serializes an incoming update value into its stored text form and
// the setting type it implies.
func Encode(value interface{}) (string, models.SettingType, error) {
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v), models.SettingBoolean, nil
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), models.SettingNumber, nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), models.SettingNumber, nil
	case string:
		return v, models.SettingString, nil
	case map[string]interface{}, []interface{}:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", "", err
		}
		return string(raw), models.SettingJSON, nil
	case nil:
		return "", models.SettingString, nil
	default:
		return fmt.Sprintf("%v", v), models.SettingString, nil
	}
}

// Revalidate checks that an incoming stored-form value still parses under a
// setting's previously declared type. Booleans accept any truthy-set or
// falsy text, numbers must parse, json must unmarshal.
func Revalidate(value string, typ models.SettingType) error {
	switch typ {
	case models.SettingNumber:
		if _, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return nil
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return nil
		}
		return fmt.Errorf("expected a number")
	case models.SettingJSON:
		var parsed interface{}
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			return fmt.Errorf("expected valid json")
		}
		return nil
	}
	return nil
}
