package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/suPer8Hu/codeassist/internal/chat"
)

var (
	chatHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	roleStyles = map[string]lipgloss.Style{
		chat.RoleUser:      lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		chat.RoleAssistant: lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true),
		chat.RoleSystem:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	}
)

func (a *app) showCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the messages of a chat",
		Long:  `Print the messages of a chat. The id may also be a url id.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.find(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, chatHeaderStyle.Render(describe(*item)))
			meta := fmt.Sprintf("id %s  url %s  %s", item.ID, item.URLID, item.Timestamp)
			if md := item.Metadata; md != nil && md.GitURL != "" {
				meta += "  git " + md.GitURL
				if md.GitBranch != "" {
					meta += "@" + md.GitBranch
				}
			}
			fmt.Fprintln(out, metaStyle.Render(meta))
			fmt.Fprintln(out)

			for _, m := range item.Messages {
				style, ok := roleStyles[m.Role]
				if !ok {
					style = metaStyle
				}
				text := m.Text()
				if !raw {
					text = chat.StripThoughts(text)
				}
				fmt.Fprintf(out, "%s %s\n", style.Render(m.Role), metaStyle.Render(m.ID))
				fmt.Fprintln(out, strings.TrimSpace(text))
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "keep model thought blocks")
	return cmd
}

func (a *app) find(cmd *cobra.Command, id string) (*chat.HistoryItem, error) {
	item, err := a.store.GetMessages(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("chat %s not found", id)
	}
	return item, nil
}
