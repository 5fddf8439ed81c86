package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/suPer8Hu/codeassist/internal/chat"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List chats, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.store.ListChats(cmd.Context())
			if err != nil {
				return fmt.Errorf("list chats: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, headerStyle.Render("No chats found"))
				return nil
			}
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d chat(s)", len(items))))
			fmt.Fprintln(out)

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, strings.Join([]string{
				titleStyle.Render("ID"),
				titleStyle.Render("URL ID"),
				titleStyle.Render("Description"),
				titleStyle.Render("Messages"),
				titleStyle.Render("Updated"),
			}, "\t"))
			for _, item := range items {
				fmt.Fprintln(w, strings.Join([]string{
					idStyle.Render(item.ID),
					item.URLID,
					describe(item),
					countStyle.Render(strconv.Itoa(len(item.Messages))),
					dateStyle.Render(when(item.Timestamp, time.Now())),
				}, "\t"))
			}
			return w.Flush()
		},
	}
}

func describe(item chat.HistoryItem) string {
	d := item.Description
	if d == "" {
		d = "Untitled"
	}
	if len(d) > 50 {
		d = d[:47] + "..."
	}
	return d
}

// when renders a stored timestamp relative to now.
func when(ts string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	t = t.Local()
	switch diff := now.Sub(t); {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}
