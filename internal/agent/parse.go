package agent

import "strings"

// extractJSONArray pulls the first JSON array out of a model response,
// tolerating surrounding prose and markdown code fences.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// extractJSONObject pulls the first JSON object out of a model
// response, tolerating surrounding prose and markdown code fences.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
