package workspace

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxFiles     = 10
	DefaultMaxFileBytes = 50 * 1024

	TruncationMarker = "[... content truncated ...]"
)

// Ranker orders candidate file paths before the file cap is applied.
// It must return a permutation or subset of paths.
type Ranker func(paths []string, files *FileMap) []string

// InsertionOrder keeps the FileMap order.
func InsertionOrder(paths []string, _ *FileMap) []string { return paths }

// Serializer renders files as a single artifact block for a prompt. Output
// size is bounded by MaxFiles * MaxFileBytes plus markup.
type Serializer struct {
	MaxFiles      int
	MaxFileBytes  int
	Filter        *IgnoreFilter
	Ranker        Ranker
	RelativePaths bool
}

func NewSerializer(filter *IgnoreFilter) *Serializer {
	return &Serializer{
		MaxFiles:     DefaultMaxFiles,
		MaxFileBytes: DefaultMaxFileBytes,
		Filter:       filter,
		Ranker:       InsertionOrder,
	}
}

// Serialize never fails; an empty or folder-only map yields an empty
// container.
func (s *Serializer) Serialize(files *FileMap) string {
	paths := files.Files()
	if s.Filter != nil {
		paths = s.Filter.Filter(paths)
	}
	total := len(paths)

	rank := s.Ranker
	if rank == nil {
		rank = InsertionOrder
	}
	ordered := rank(paths, files)

	maxFiles := s.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	if len(ordered) > maxFiles {
		ordered = ordered[:maxFiles]
	}

	records := make([]string, 0, len(ordered))
	for _, p := range ordered {
		d, ok := files.Get(p)
		if !ok || !d.IsFile() {
			continue
		}
		content, _ := TruncateLines(d.Content, s.maxBytes())
		records = append(records, fileRecord(s.displayPath(p), content))
	}
	shown := len(records)

	var b strings.Builder
	fmt.Fprintf(&b, "<boltArtifact id=\"code-content\" title=\"Code Content (%d/%d files)\">\n", shown, total)
	for _, r := range records {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	if shown < total {
		fmt.Fprintf(&b, "Showing %d of %d files. Focus on the most relevant files for your task.\n", shown, total)
	}
	b.WriteString("</boltArtifact>")
	return b.String()
}

func (s *Serializer) maxBytes() int {
	if s.MaxFileBytes <= 0 {
		return DefaultMaxFileBytes
	}
	return s.MaxFileBytes
}

func (s *Serializer) displayPath(p string) string {
	if !s.RelativePaths {
		return p
	}
	if s.Filter != nil {
		return s.Filter.Relative(p)
	}
	return strings.TrimPrefix(p, DefaultRoot)
}

func fileRecord(path, content string) string {
	return fmt.Sprintf("<boltAction type=\"file\" filePath=%q>%s</boltAction>", path, content)
}

// TruncateLines cuts content to at most max bytes at a line boundary and
// appends TruncationMarker. Content within the limit is returned unchanged.
func TruncateLines(content string, max int) (string, bool) {
	if len(content) <= max {
		return content, false
	}
	var b strings.Builder
	size := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		if size+len(line) > max {
			break
		}
		b.WriteString(line)
		size += len(line)
	}
	b.WriteString(TruncationMarker)
	return b.String(), true
}
