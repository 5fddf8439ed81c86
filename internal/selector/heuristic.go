// Package selector decides which project files accompany the next prompt.
package selector

import (
	"path"
	"strings"
)

// MaxHeuristicFiles caps every heuristic selection.
const MaxHeuristicFiles = 5

type Intent int

const (
	IntentNone Intent = iota
	IntentSetup
	IntentBugfix
	IntentFeature
)

func (i Intent) String() string {
	switch i {
	case IntentSetup:
		return "setup"
	case IntentBugfix:
		return "bugfix"
	case IntentFeature:
		return "feature"
	default:
		return "none"
	}
}

var (
	setupKeywords   = []string{"setup", "install", "run", "start"}
	bugfixKeywords  = []string{"fix", "error", "bug", "issue"}
	featureKeywords = []string{"add", "create", "implement", "feature"}

	configFileKeywords = []string{
		"package.json",
		"package-lock.json",
		"yarn.lock",
		"tsconfig.json",
		"vite.config",
		"webpack.config",
		"dockerfile",
		".env",
		"readme",
	}

	sourceExtensions = map[string]bool{".ts": true, ".tsx": true, ".js": true, ".jsx": true}
)

// ClassifyIntent matches keywords as substrings of the lowercased text,
// checking setup, then bugfix, then feature.
func ClassifyIntent(text string) Intent {
	text = strings.ToLower(text)
	switch {
	case containsAny(text, setupKeywords):
		return IntentSetup
	case containsAny(text, bugfixKeywords):
		return IntentBugfix
	case containsAny(text, featureKeywords):
		return IntentFeature
	}
	return IntentNone
}

// SelectHeuristic returns up to MaxHeuristicFiles paths for the intent of
// text, in the order given. An empty result means the caller should ask the
// model instead.
func SelectHeuristic(text string, paths []string) []string {
	var keep func(p string) bool
	switch ClassifyIntent(text) {
	case IntentSetup:
		keep = func(p string) bool { return containsAny(strings.ToLower(p), configFileKeywords) }
	case IntentBugfix:
		keep = isSource
	case IntentFeature:
		keep = func(p string) bool {
			lp := strings.ToLower(p)
			return isSource(p) && !strings.Contains(lp, "test") && !strings.Contains(lp, "spec")
		}
	default:
		return nil
	}

	var out []string
	for _, p := range paths {
		if len(out) == MaxHeuristicFiles {
			break
		}
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func isSource(p string) bool {
	return sourceExtensions[strings.ToLower(path.Ext(p))]
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
