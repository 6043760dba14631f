package classifier

import "regexp"

type sensitivePattern struct {
	name string
	re   *regexp.Regexp
}

var sensitivePatterns = []sensitivePattern{
	{"api_key", regexp.MustCompile(`(?i)api[_-]?key\s*[:=]`)},
	{"secret", regexp.MustCompile(`(?i)secret\s*[:=]`)},
	{"token", regexp.MustCompile(`(?i)(access|auth|refresh)?[_-]?token\s*[:=]`)},
	{"password", regexp.MustCompile(`(?i)passw(or)?d\s*[:=]`)},
	{"authorization", regexp.MustCompile(`(?i)authorization:\s*\S+|bearer\s+[a-z0-9._~+/-]{8,}`)},
	{"private_key", regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`)},
}

// ScanSensitive returns the names of the sensitive-data patterns found in
// content. It only detects; nothing is redacted.
func ScanSensitive(content string) []string {
	var found []string
	for _, p := range sensitivePatterns {
		if p.re.MatchString(content) {
			found = append(found, p.name)
		}
	}
	return found
}
