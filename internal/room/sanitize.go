package room

import "regexp"

// The contract is "never forward markup capable of script execution", so both
// paired script elements and dangling open/close tags are removed.
var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	scriptTagRe   = regexp.MustCompile(`(?i)</?script\b[^>]*>`)
)

func stripScriptTags(s string) string {
	s = scriptBlockRe.ReplaceAllString(s, "")
	return scriptTagRe.ReplaceAllString(s, "")
}
