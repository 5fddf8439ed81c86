// Package workspace models the in-memory project tree handed to context
// selection and turns a subset of it into prompt text.
package workspace

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	TypeFile   = "file"
	TypeFolder = "folder"
)

// Dirent is a single FileMap entry. Folders carry no content.
type Dirent struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	IsBinary bool   `json:"isBinary,omitempty"`
}

func File(content string) Dirent { return Dirent{Type: TypeFile, Content: content} }

func Folder() Dirent { return Dirent{Type: TypeFolder} }

func (d Dirent) IsFile() bool { return d.Type == TypeFile }

// FileMap is an insertion-ordered mapping from path to Dirent.
// The zero value is ready to use.
type FileMap struct {
	order   []string
	entries map[string]Dirent
}

func NewFileMap() *FileMap {
	return &FileMap{entries: make(map[string]Dirent)}
}

// Set inserts or replaces path. Replacing keeps the original position.
func (m *FileMap) Set(path string, d Dirent) {
	if m.entries == nil {
		m.entries = make(map[string]Dirent)
	}
	if d.Type == TypeFolder {
		d.Content = ""
		d.IsBinary = false
	}
	if _, ok := m.entries[path]; !ok {
		m.order = append(m.order, path)
	}
	m.entries[path] = d
}

func (m *FileMap) Get(path string) (Dirent, bool) {
	if m == nil || m.entries == nil {
		return Dirent{}, false
	}
	d, ok := m.entries[path]
	return d, ok
}

func (m *FileMap) Has(path string) bool {
	_, ok := m.Get(path)
	return ok
}

func (m *FileMap) Delete(path string) {
	if m == nil || m.entries == nil {
		return
	}
	if _, ok := m.entries[path]; !ok {
		return
	}
	delete(m.entries, path)
	for i, p := range m.order {
		if p == path {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *FileMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Paths returns a copy of all paths in insertion order.
func (m *FileMap) Paths() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Files returns the paths of file entries only, in insertion order.
func (m *FileMap) Files() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.order))
	for _, p := range m.order {
		if m.entries[p].IsFile() {
			out = append(out, p)
		}
	}
	return out
}

// Range calls fn for each entry in order until fn returns false.
func (m *FileMap) Range(fn func(path string, d Dirent) bool) {
	if m == nil {
		return
	}
	for _, p := range m.order {
		if !fn(p, m.entries[p]) {
			return
		}
	}
}

// Clone returns a shallow copy that can be mutated independently.
func (m *FileMap) Clone() *FileMap {
	out := NewFileMap()
	m.Range(func(p string, d Dirent) bool {
		out.Set(p, d)
		return true
	})
	return out
}

func (m *FileMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m.Paths() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.entries[p])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping the key order of the document.
func (m *FileMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = FileMap{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("filemap: expected object, got %v", tok)
	}

	out := NewFileMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("filemap: expected string key, got %v", tok)
		}
		var d Dirent
		if err := dec.Decode(&d); err != nil {
			return fmt.Errorf("filemap: entry %q: %w", key, err)
		}
		out.Set(key, d)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = *out
	return nil
}
