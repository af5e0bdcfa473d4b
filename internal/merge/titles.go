package merge

import (
	"regexp"
	"strings"
)

// incompatibilityRule vetoes a pair of titles: when either title matches the
// trigger, the other title must not match any of the blocked patterns.
type incompatibilityRule struct {
	trigger *regexp.Regexp
	blocked []*regexp.Regexp
}

// wordPattern builds a case-insensitive, word-boundary alternation over the
// given keyword phrases.
func wordPattern(phrases ...string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// seniorityCallPattern matches a seniority word followed later in the title
// by a call/meeting form ("manager call", "ceo 1:1", ...).
var seniorityCallPattern = regexp.MustCompile(
	`(?i)\b(manager|executive|director|vp|ceo|cto|cfo)\b.*\b(call|meeting|1:1|one on one)\b`)

// incompatibilityRules is the ordered veto table. The first rule that fires
// a block decides; later rules are not consulted. Keeping the rules as data
// lets them be unit tested and extended without touching control flow.
var incompatibilityRules = []incompatibilityRule{
	{
		// One-on-one forms never merge with group-style meetings.
		trigger: wordPattern("1:1", "one on one", "one to one", "individual"),
		blocked: []*regexp.Regexp{
			wordPattern("demo"), wordPattern("demonstration"), wordPattern("presentation"),
			wordPattern("standup"), wordPattern("sync"), wordPattern("review"),
			wordPattern("team"), wordPattern("group"),
		},
	},
	{
		// Seniority calls stay away from demos and customer-facing meetings.
		trigger: seniorityCallPattern,
		blocked: []*regexp.Regexp{
			wordPattern("demo"), wordPattern("demonstration"), wordPattern("presentation"),
			wordPattern("client"), wordPattern("customer"),
		},
	},
	{
		trigger: wordPattern("personal", "private", "confidential"),
		blocked: []*regexp.Regexp{
			wordPattern("team"), wordPattern("group"), wordPattern("public"),
			wordPattern("all-hands"), wordPattern("company"),
		},
	},
	{
		trigger: wordPattern("client", "customer", "external", "vendor", "partner"),
		blocked: []*regexp.Regexp{
			wordPattern("internal"), wordPattern("team"), wordPattern("standup"),
			wordPattern("sync"), wordPattern("1:1"), wordPattern("one on one"),
		},
	},
	{
		trigger: wordPattern("demo", "demonstration", "presentation"),
		blocked: []*regexp.Regexp{
			wordPattern("1:1"), wordPattern("one on one"), wordPattern("manager"),
			wordPattern("executive"), wordPattern("personal"), wordPattern("private"),
		},
	},
}

// TitlesCompatible reports whether two event titles may ever be merged.
// Titles are compared lower-cased and trimmed; an empty title matches no
// trigger or blocked pattern and is compatible with everything. The check is
// symmetric in its arguments.
func TitlesCompatible(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return true
	}
	for _, rule := range incompatibilityRules {
		if rule.trigger.MatchString(a) && matchesAny(rule.blocked, b) {
			return false
		}
		if rule.trigger.MatchString(b) && matchesAny(rule.blocked, a) {
			return false
		}
	}
	return true
}

func matchesAny(patterns []*regexp.Regexp, title string) bool {
	for _, p := range patterns {
		if p.MatchString(title) {
			return true
		}
	}
	return false
}
