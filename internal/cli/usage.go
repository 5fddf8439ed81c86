package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) usageCmd() *cobra.Command {
	var chatID string
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show recorded model calls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := a.store.ListUsage(cmd.Context(), chatID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, headerStyle.Render("No usage recorded"))
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "CHAT\tPROVIDER\tMODEL\tPROMPT\tCOMPLETION\tDURATION\tAT")
			for _, ev := range events {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
					ev.ChatID, ev.Provider, ev.Model, ev.PromptChars, ev.CompletionChars,
					ev.Duration.Round(time.Millisecond), ev.CreatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&chatID, "chat", "", "only events of this chat")
	return cmd
}
