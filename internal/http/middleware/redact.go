package middleware

import (
	"regexp"
	"strings"
)

// Redactor scrubs personal data and credentials from strings and headers
// before they reach the logs. It never sees request or response bodies.
type Redactor struct {
	uuidRE   *regexp.Regexp
	emailRE  *regexp.Regexp
	phoneRE  *regexp.Regexp
	bearerRE *regexp.Regexp
	jwtRE    *regexp.Regexp
	masked   map[string]struct{}
}

// RedactOptions configures additional scrub behavior.
//
// MaskHeaders lists extra header names whose values are replaced with
// "[REDACTED]". Matching is case-insensitive and merged with the built-in
// set (Authorization, Cookie, Set-Cookie, X-Cg-Demo-Api-Key).
type RedactOptions struct {
	MaskHeaders []string
}

// NewRedactor compiles the scrub patterns once.
func NewRedactor(opts RedactOptions) *Redactor {
	r := &Redactor{
		uuidRE:  regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`),
		emailRE: regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`),
		// Digits only, so hex runs inside UUIDs never match.
		phoneRE:  regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`),
		bearerRE: regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-._~+/]+=*`),
		jwtRE:    regexp.MustCompile(`\beyJ[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+`),
		masked: map[string]struct{}{
			"authorization":     {},
			"cookie":            {},
			"set-cookie":        {},
			"x-cg-demo-api-key": {},
		},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			r.masked[h] = struct{}{}
		}
	}
	return r
}

// String returns s with tokens, ids, emails and phone numbers replaced.
// Tokens go first so their base64 segments are not half-matched later;
// UUIDs precede phones because the phone pattern is the loosest.
func (r *Redactor) String(s string) string {
	if s == "" {
		return s
	}
	out := r.bearerRE.ReplaceAllString(s, "Bearer [REDACTED:token]")
	out = r.jwtRE.ReplaceAllString(out, "[REDACTED:token]")
	out = r.uuidRE.ReplaceAllString(out, "[REDACTED:id]")
	out = r.emailRE.ReplaceAllString(out, "[REDACTED:email]")
	out = r.phoneRE.ReplaceAllString(out, "[REDACTED:phone]")
	return out
}

// Headers returns a flattened, scrubbed copy of h.
func (r *Redactor) Headers(h map[string][]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.masked[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = r.String(strings.Join(vv, ", "))
	}
	return out
}
