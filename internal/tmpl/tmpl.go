// Package tmpl expands {placeholder} variables in notification text.
package tmpl

import "strings"

// Vars are the runtime values available to a template.
type Vars struct {
	Repo       string
	Branch     string
	Tag        string
	Outcome    string
	Conclusion string
	URL        string
	Elapsed    string
}

// Expand replaces template placeholders in s with runtime values.
// {outcome} → outcome as-is, {Outcome} → title-cased. Unknown
// placeholders are left untouched.
func Expand(s string, v Vars) string {
	return strings.NewReplacer(
		"{repo}", v.Repo,
		"{branch}", v.Branch,
		"{tag}", v.Tag,
		"{Outcome}", TitleCase(v.Outcome),
		"{outcome}", v.Outcome,
		"{conclusion}", v.Conclusion,
		"{url}", v.URL,
		"{elapsed}", v.Elapsed,
	).Replace(s)
}

// TitleCase uppercases the first byte of s.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
