package chat

import (
	"regexp"
)

var (
	modelDirective    = regexp.MustCompile(`^\[Model: (.*?)\]\n\n`)
	providerDirective = regexp.MustCompile(`\[Provider: (.*?)\]\n\n`)

	fileActionRe = regexp.MustCompile(`(<boltAction[^>]*type="file"[^>]*>)[\s\S]*?(</boltAction>)`)
	thoughtDivRe = regexp.MustCompile(`(?s)<div class=\\?"__boltThought__\\?">.*?</div>`)
	thinkRe      = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

// Directives name the model and provider requested inline by the user.
type Directives struct {
	Model    string
	Provider string
}

// ExtractDirectives reads a leading "[Model: X]\n\n" and the first
// "[Provider: Y]\n\n" from the message text. Missing directives fall back to
// defaults. The returned text has both directives removed.
func ExtractDirectives(text string, defaults Directives) (Directives, string) {
	d := defaults
	if m := modelDirective.FindStringSubmatchIndex(text); m != nil {
		d.Model = text[m[2]:m[3]]
		text = text[:m[0]] + text[m[1]:]
	}
	if m := providerDirective.FindStringSubmatchIndex(text); m != nil {
		d.Provider = text[m[2]:m[3]]
		text = text[:m[0]] + text[m[1]:]
	}
	return d, text
}

// SimplifyFileActions replaces every file action body with a placeholder so
// old file contents do not crowd the prompt.
func SimplifyFileActions(text string) string {
	return fileActionRe.ReplaceAllString(text, "${1}\n          ...\n        ${2}")
}

// StripThoughts removes reasoning blocks from assistant output.
func StripThoughts(text string) string {
	text = thoughtDivRe.ReplaceAllString(text, "")
	return thinkRe.ReplaceAllString(text, "")
}

// NormalizeHistory prepares a conversation for re-sending to a model. User
// turns lose their directives, assistant turns lose file bodies and thought
// blocks. The directives of the last user turn are returned; a user turn
// without directives resets them to defaults.
func NormalizeHistory(messages []Message, defaults Directives) ([]Message, Directives) {
	out := make([]Message, 0, len(messages))
	current := defaults
	for _, m := range messages {
		switch m.Role {
		case RoleUser:
			d, _ := ExtractDirectives(m.Text(), defaults)
			current = d
			m.Content = m.Content.MapText(func(s string) string {
				_, cleaned := ExtractDirectives(s, defaults)
				return cleaned
			})
		case RoleAssistant:
			m.Content = m.Content.MapText(func(s string) string {
				return StripThoughts(SimplifyFileActions(s))
			})
		}
		out = append(out, m)
	}
	return out, current
}
