package chat

import (
	"github.com/suPer8Hu/codeassist/internal/workspace"
)

// Metadata links a chat to external resources.
type Metadata struct {
	GitURL        string `json:"gitUrl,omitempty"`
	GitBranch     string `json:"gitBranch,omitempty"`
	NetlifySiteID string `json:"netlifySiteId,omitempty"`
}

// HistoryItem is a persisted chat. Timestamp is an ISO-8601 string.
type HistoryItem struct {
	ID          string    `json:"id"`
	URLID       string    `json:"urlId,omitempty"`
	Description string    `json:"description,omitempty"`
	Messages    []Message `json:"messages"`
	Timestamp   string    `json:"timestamp"`
	Metadata    *Metadata `json:"metadata,omitempty"`
}

// Snapshot captures the workspace as of the message with id ChatIndex.
type Snapshot struct {
	ChatIndex string              `json:"chatIndex"`
	Files     *workspace.FileMap `json:"files"`
	Summary   string              `json:"summary,omitempty"`
}
