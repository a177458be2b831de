package paramutil

import "fmt"

// BoolPtr returns a pointer to the given bool, for annotation literals.
func BoolPtr(b bool) *bool {
	return &b
}

// ExtractRequiredString extracts a required string parameter from params map.
// Returns ErrMissingParameter if the parameter is missing or empty.
func ExtractRequiredString(params map[string]interface{}, key string) (string, error) {
	if v, ok := params[key].(string); ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s", ErrMissingParameter, key)
}

// ExtractOptionalString extracts an optional string parameter.
// Returns empty string if the parameter is missing or empty.
func ExtractOptionalString(params map[string]interface{}, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

// ExtractOptionalStringWithDefault extracts an optional string parameter with a default value.
// Returns defaultValue if the parameter is missing or empty.
func ExtractOptionalStringWithDefault(params map[string]interface{}, key, defaultValue string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// ExtractBool extracts a boolean parameter with a default value
func ExtractBool(params map[string]interface{}, key string, defaultValue bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return defaultValue
}

// ExtractFormat extracts the format parameter with "table" as default.
func ExtractFormat(params map[string]interface{}) string {
	return ExtractOptionalStringWithDefault(params, ParamFormat, FormatTable)
}

// ValidateFormat validates that the format is one of the supported formats
func ValidateFormat(format string) error {
	switch format {
	case FormatJSON, FormatYAML, FormatTable:
		return nil
	default:
		return fmt.Errorf("%w: %s (supported: json, yaml, table)", ErrInvalidFormat, format)
	}
}

// ExtractOptionalInt64 extracts an optional int64 parameter. JSON
// numbers arrive as float64, so that is checked first.
func ExtractOptionalInt64(params map[string]interface{}, key string) *int64 {
	if v, ok := params[key].(float64); ok {
		val := int64(v)
		return &val
	}
	if v, ok := params[key].(int64); ok {
		return &v
	}
	if v, ok := params[key].(int); ok {
		val := int64(v)
		return &val
	}
	return nil
}

// ExtractInt64 extracts an int64 parameter with a default value
func ExtractInt64(params map[string]interface{}, key string, defaultValue int64) int64 {
	if v := ExtractOptionalInt64(params, key); v != nil {
		return *v
	}
	return defaultValue
}

// ExtractRequiredInt64 extracts a required integer parameter.
func ExtractRequiredInt64(params map[string]interface{}, key string) (int64, error) {
	if v := ExtractOptionalInt64(params, key); v != nil {
		return *v, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrMissingParameter, key)
}
