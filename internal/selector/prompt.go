package selector

import (
	"fmt"
	"strings"
)

// MaxPromptPaths limits how many candidate paths are listed for the model.
const MaxPromptPaths = 20

const systemPrompt = `You pick which project files a coding assistant should see next.

Candidate files:
%s

Files already in the context buffer:
%s

Answer with a single block and nothing else:
<updateContextBuffer>
  <includeFile path="relative/path"/>
  <excludeFile path="relative/path"/>
</updateContextBuffer>

Rules:
- Only name files from the candidate list.
- Do not include a file that is already in the buffer.
- At most 3 files may be in the buffer; exclude stale ones to make room.
- An empty block means no change.`

// Prompt is the system and user text for one selection call.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt lists at most MaxPromptPaths candidates (relative paths),
// the serialized context buffer, the user's question and the running
// summary.
func BuildPrompt(paths []string, contextBuffer, question, summary string) Prompt {
	if len(paths) > MaxPromptPaths {
		paths = paths[:MaxPromptPaths]
	}

	user := fmt.Sprintf("Here is the summary of the chat till now: %s\n\nQuestion: %s", summary, question)

	return Prompt{
		System: fmt.Sprintf(systemPrompt, strings.Join(paths, "\n"), contextBuffer),
		User:   user,
	}
}
