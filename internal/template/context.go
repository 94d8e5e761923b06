package template

// MergeVariables merges variable sets. Later sets override earlier ones.
func MergeVariables(sets ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, set := range sets {
		for key, value := range set {
			result[key] = value
		}
	}
	return result
}
