package workspace

import (
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultRoot is the absolute prefix every project path carries.
const DefaultRoot = "/home/project/"

// DefaultIgnorePatterns keeps build output, dependencies, VCS data and
// lockfiles out of prompts.
var DefaultIgnorePatterns = []string{
	"node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
	".next/**",
	"coverage/**",
	".cache/**",
	".vscode/**",
	".idea/**",
	"**/*.log",
	"**/.DS_Store",
	"**/npm-debug.log*",
	"**/yarn-debug.log*",
	"**/yarn-error.log*",
	"**/*lock.json",
	"**/*lock.yml",
}

// IgnoreFilter decides whether a path may be considered for context.
// It is immutable after construction.
type IgnoreFilter struct {
	root    string
	matcher *ignore.GitIgnore
}

// NewIgnoreFilter compiles patterns once. An empty root means DefaultRoot;
// with no patterns DefaultIgnorePatterns are used.
func NewIgnoreFilter(root string, patterns ...string) *IgnoreFilter {
	if root == "" {
		root = DefaultRoot
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	if len(patterns) == 0 {
		patterns = DefaultIgnorePatterns
	}
	return &IgnoreFilter{
		root:    root,
		matcher: ignore.CompileIgnoreLines(patterns...),
	}
}

func (f *IgnoreFilter) Root() string { return f.root }

// IsIgnored reports whether a project-relative path matches a pattern.
func (f *IgnoreFilter) IsIgnored(rel string) bool {
	if rel == "" {
		return false
	}
	return f.matcher.MatchesPath(rel)
}

// Allows strips the project root and checks the remaining relative path.
func (f *IgnoreFilter) Allows(path string) bool {
	return !f.IsIgnored(f.Relative(path))
}

// Filter returns the allowed paths, preserving order.
func (f *IgnoreFilter) Filter(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if f.Allows(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f *IgnoreFilter) Relative(path string) string {
	return strings.TrimPrefix(path, f.root)
}

func (f *IgnoreFilter) Absolute(path string) string {
	if strings.HasPrefix(path, f.root) {
		return path
	}
	return f.root + strings.TrimPrefix(path, "/")
}
