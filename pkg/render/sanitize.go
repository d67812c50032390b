package render

import "github.com/microcosm-cc/bluemonday"

// Sanitizer cleans HTML before it is written into the table.
// *bluemonday.Policy satisfies it.
type Sanitizer interface {
	Sanitize(s string) string
}

// trusted passes content through untouched.
type trusted struct{}

func (trusted) Sanitize(s string) string { return s }

// Trusted returns a Sanitizer that leaves content unchanged.
func Trusted() Sanitizer {
	return trusted{}
}

// UGC returns a bluemonday policy for user generated content: formatting
// and tables are kept, scripts, styles and event handlers are dropped.
func UGC() Sanitizer {
	return bluemonday.UGCPolicy()
}
