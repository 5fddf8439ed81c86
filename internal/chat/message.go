// Package chat holds the conversation model shared by context selection and
// the persistent store.
package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one conversation turn. It is treated as immutable once stored.
type Message struct {
	ID          string       `json:"id"`
	Role        string       `json:"role"`
	Content     Content      `json:"content"`
	CreatedAt   *time.Time   `json:"createdAt,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Text returns the plain text of the message (first text part for
// structured content).
func (m Message) Text() string { return m.Content.PlainText() }

// Content is either a plain string or a list of parts. Parts is non-nil
// exactly when the content is structured.
type Content struct {
	Text  string
	Parts []Part
}

func TextContent(s string) Content { return Content{Text: s} }

func PartsContent(parts ...Part) Content {
	if parts == nil {
		parts = []Part{}
	}
	return Content{Parts: parts}
}

func (c Content) IsStructured() bool { return c.Parts != nil }

func (c Content) PlainText() string {
	if !c.IsStructured() {
		return c.Text
	}
	for _, p := range c.Parts {
		if p.Type == "text" {
			return p.Text
		}
	}
	return ""
}

// MapText applies fn to the string content or to every text part.
func (c Content) MapText(fn func(string) string) Content {
	if !c.IsStructured() {
		return Content{Text: fn(c.Text)}
	}
	parts := make([]Part, len(c.Parts))
	for i, p := range c.Parts {
		if p.Type == "text" {
			p = Part{Type: "text", Text: fn(p.Text)}
		}
		parts[i] = p
	}
	return Content{Parts: parts}
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.IsStructured() {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = Content{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Content{Text: s}
	case data[0] == '[':
		parts := []Part{}
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		*c = Content{Parts: parts}
	default:
		return fmt.Errorf("chat: content must be a string or an array, got %s", data[:1])
	}
	return nil
}

// Part is one element of structured content. Non-text parts (images, files)
// are carried verbatim.
type Part struct {
	Type string
	Text string
	raw  json.RawMessage
}

func TextPart(s string) Part { return Part{Type: "text", Text: s} }

func (p Part) MarshalJSON() ([]byte, error) {
	if p.raw != nil && p.Type != "text" {
		return p.raw, nil
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	}{p.Type, p.Text})
}

func (p *Part) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	*p = Part{Type: head.Type, Text: head.Text, raw: append(json.RawMessage(nil), data...)}
	return nil
}
