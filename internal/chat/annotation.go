package chat

import (
	"encoding/json"
)

const (
	AnnotationChatSummary = "chatSummary"
	AnnotationCodeContext = "codeContext"
)

// Annotation is structured metadata attached to a message. Only
// chatSummary and codeContext objects are interpreted; anything else
// (including non-object values) round-trips untouched and is ignored.
type Annotation struct {
	Type    string
	Summary string
	ChatID  string
	Files   []string

	raw json.RawMessage
}

func SummaryAnnotation(summary, chatID string) Annotation {
	return Annotation{Type: AnnotationChatSummary, Summary: summary, ChatID: chatID}
}

func CodeContextAnnotation(files ...string) Annotation {
	return Annotation{Type: AnnotationCodeContext, Files: files}
}

type annotationFields struct {
	Type    string   `json:"type"`
	Summary string   `json:"summary,omitempty"`
	ChatID  string   `json:"chatId,omitempty"`
	Files   []string `json:"files,omitempty"`
}

func (a Annotation) MarshalJSON() ([]byte, error) {
	if a.raw != nil {
		return a.raw, nil
	}
	return json.Marshal(annotationFields{a.Type, a.Summary, a.ChatID, a.Files})
}

func (a *Annotation) UnmarshalJSON(data []byte) error {
	*a = Annotation{raw: append(json.RawMessage(nil), data...)}
	var f annotationFields
	if err := json.Unmarshal(data, &f); err != nil {
		// not an object, or a known key with an unexpected type
		return nil
	}
	a.Type, a.Summary, a.ChatID, a.Files = f.Type, f.Summary, f.ChatID, f.Files
	return nil
}

// ContextState is what earlier turns recorded about the conversation.
type ContextState struct {
	// Summary of the chat so far; empty when none was recorded.
	Summary string
	// Files previously sent to the model, relative to the project root.
	Files []string

	HasSummary     bool
	HasCodeContext bool
}

// ReadContext looks at the last assistant message only. One pass over its
// annotations records the first chatSummary and the first codeContext,
// stopping once both are found.
func ReadContext(messages []Message) ContextState {
	var st ContextState
	last := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleAssistant {
			last = i
			break
		}
	}
	if last < 0 {
		return st
	}
	for _, a := range messages[last].Annotations {
		switch a.Type {
		case AnnotationChatSummary:
			if !st.HasSummary {
				st.Summary, st.HasSummary = a.Summary, true
			}
		case AnnotationCodeContext:
			if !st.HasCodeContext {
				st.Files, st.HasCodeContext = append([]string(nil), a.Files...), true
			}
		}
		if st.HasSummary && st.HasCodeContext {
			break
		}
	}
	return st
}
