package signature

import (
	"regexp"
	"strings"
)

// Match is the outcome of running banner text through the rule table
type Match struct {
	Service string
	Version string
}

// rule pairs a compiled pattern with the service it identifies.
// versionGroup names the capture group (by index) holding version
// info; 0 means the rule carries no version information.
type rule struct {
	service      string
	pattern      *regexp.Regexp
	versionGroup int
}

// Matcher holds an ordered, immutable rule table. Rules are evaluated
// top to bottom and the first match wins, so results are reproducible
// for identical banner text. Safe for concurrent use once constructed.
type Matcher struct {
	rules []rule
}

// NewMatcher returns a Matcher loaded with the default rule table
func NewMatcher() *Matcher {
	return &Matcher{rules: defaultRules}
}

// Match runs text through the rule table in priority order. It returns
// false when no rule matches; callers decide the fallback service name.
// A matched rule with no version capture (or an empty capture) yields
// an empty Version.
func (m *Matcher) Match(text string) (Match, bool) {
	for _, r := range m.rules {
		groups := r.pattern.FindStringSubmatch(text)

		if groups == nil {
			continue
		}

		match := Match{Service: r.service}

		if r.versionGroup > 0 && r.versionGroup < len(groups) {
			match.Version = strings.TrimSpace(groups[r.versionGroup])
		}

		return match, true
	}

	return Match{}, false
}

// Rule order matters: more specific patterns first. The HTTP Server
// header rule must precede the generic HTTP status-line rule so version
// info is extracted when the header is present.
var defaultRules = []rule{
	{
		service:      "ssh",
		pattern:      regexp.MustCompile(`(?i)^SSH-\d\.\d-([^\s_/]+)[_/]?([^\s]*)`),
		versionGroup: 2,
	},
	{
		service:      "http",
		pattern:      regexp.MustCompile(`Server: ([^\r\n]+)`),
		versionGroup: 1,
	},
	{
		service: "http",
		pattern: regexp.MustCompile(`HTTP/\d\.\d`),
	},
	{
		service: "ftp",
		pattern: regexp.MustCompile(`(?i)^220[ -].*FTP`),
	},
	{
		service: "smtp",
		pattern: regexp.MustCompile(`(?i)^220 .*SMTP`),
	},
	{
		service: "pop3",
		pattern: regexp.MustCompile(`(?i)^\+OK`),
	},
	{
		service: "imap",
		pattern: regexp.MustCompile(`(?i)^\* OK`),
	},
	{
		service:      "mysql",
		pattern:      regexp.MustCompile(`([\d]+\.[\d]+\.[\d]+)[^\x00]*mysql_native_password`),
		versionGroup: 1,
	},
	{
		service: "redis",
		pattern: regexp.MustCompile(`(?i)^-ERR unknown command`),
	},
}
