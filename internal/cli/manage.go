package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a chat and its snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.DeleteChat(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func (a *app) forkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fork <id> <messageId>",
		Short: "Copy a chat up to and including a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			urlID, err := a.store.ForkChat(cmd.Context(), args[0], args[1])
			return created(cmd, urlID, err)
		},
	}
}

func (a *app) duplicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			urlID, err := a.store.DuplicateChat(cmd.Context(), args[0])
			return created(cmd, urlID, err)
		},
	}
}

func created(cmd *cobra.Command, urlID string, err error) error {
	if err != nil {
		return err
	}
	if urlID == "" {
		return fmt.Errorf("chat history unavailable")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", urlID)
	return nil
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <description...>",
		Short: "Change the description of a chat",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := strings.Join(args[1:], " ")
			if err := a.store.UpdateDescription(cmd.Context(), args[0], desc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed %s\n", args[0])
			return nil
		},
	}
}
