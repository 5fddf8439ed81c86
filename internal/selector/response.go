package selector

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	wrapperOpen  = "<updateContextBuffer>"
	wrapperClose = "</updateContextBuffer>"
)

// ContextUpdate is a well-formed selection response.
type ContextUpdate struct {
	Includes []string
	Excludes []string
}

// InvalidContextResponseError reports a model response that does not follow
// the selection protocol.
type InvalidContextResponseError struct {
	Reason string
}

func (e *InvalidContextResponseError) Error() string {
	return "invalid context response: " + e.Reason
}

func invalid(format string, args ...any) error {
	return &InvalidContextResponseError{Reason: fmt.Sprintf(format, args...)}
}

// ParseContextResponse validates a response. It must hold exactly one
// <updateContextBuffer> element whose children are only includeFile and
// excludeFile elements with a non-empty path attribute. Text outside the
// wrapper is ignored.
func ParseContextResponse(text string) (ContextUpdate, error) {
	var upd ContextUpdate

	switch n := strings.Count(text, wrapperOpen); {
	case n == 0:
		return upd, invalid("missing %s wrapper", wrapperOpen)
	case n > 1:
		return upd, invalid("found %d %s wrappers, want exactly one", n, wrapperOpen)
	}
	start := strings.Index(text, wrapperOpen) + len(wrapperOpen)
	end := strings.Index(text[start:], wrapperClose)
	if end < 0 {
		return upd, invalid("unterminated %s", wrapperOpen)
	}
	if strings.Count(text, wrapperClose) != 1 {
		return upd, invalid("unbalanced %s", wrapperClose)
	}
	body := text[start : start+end]

	dec := xml.NewDecoder(strings.NewReader(body))
	dec.Strict = true
	var open string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ContextUpdate{}, invalid("malformed directive: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if open != "" {
				return ContextUpdate{}, invalid("unexpected <%s> inside <%s>", t.Name.Local, open)
			}
			p := attr(t, "path")
			if p == "" {
				return ContextUpdate{}, invalid("<%s> without a path", t.Name.Local)
			}
			switch t.Name.Local {
			case "includeFile":
				upd.Includes = append(upd.Includes, p)
			case "excludeFile":
				upd.Excludes = append(upd.Excludes, p)
			default:
				return ContextUpdate{}, invalid("unknown directive <%s>", t.Name.Local)
			}
			open = t.Name.Local
		case xml.EndElement:
			open = ""
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return ContextUpdate{}, invalid("unexpected text %q", strings.TrimSpace(string(t)))
			}
		case xml.Comment:
		default:
			return ContextUpdate{}, invalid("unexpected token %T", t)
		}
	}
	return upd, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}
