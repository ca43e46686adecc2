package utils

// ToStringSlice converts a decoded JSON array claim into strings, skipping non-string entries.
// A nil or non-array value yields an empty slice.
func ToStringSlice(value any) []string {
	stringSlice := make([]string, 0)
	switch v := value.(type) {
	case []string:
		stringSlice = append(stringSlice, v...)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				stringSlice = append(stringSlice, s)
			}
		}
	}
	return stringSlice
}
