// Package cli implements chatctl, an admin tool over the chat history store.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suPer8Hu/codeassist/internal/config"
	"github.com/suPer8Hu/codeassist/internal/db"
	"github.com/suPer8Hu/codeassist/internal/store"
)

type app struct {
	driver  string
	dsn     string
	verbose bool
	secret  string

	store *store.Store
}

// NewRootCmd builds the chatctl command tree. Defaults for the connection
// flags come from the environment.
func NewRootCmd() *cobra.Command {
	cfg := config.Load()
	a := &app{}

	root := &cobra.Command{
		Use:   "chatctl",
		Short: "Inspect and maintain stored chats",
		Long: `chatctl works directly against the chat history database.

  chatctl list                        # newest chats first
  chatctl show <id>                   # messages of one chat
  chatctl export <id> --format yaml   # dump a chat
  chatctl fork <id> <messageId>       # copy a chat up to a message`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["store"] == "none" {
				return nil
			}
			logger := zap.NewNop()
			if a.verbose {
				logger = config.NewLogger(true)
			}
			ids, err := store.ParseIDStrategy(cfg.IDStrategy)
			if err != nil {
				return err
			}
			a.store = store.New(db.Opener(a.driver, a.dsn), store.WithLogger(logger), store.WithIDStrategy(ids))
			if err := a.store.Open(cmd.Context()); err != nil {
				return fmt.Errorf("open chat history: %w", err)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.store == nil {
				return nil
			}
			return a.store.Close()
		},
	}

	root.PersistentFlags().StringVar(&a.driver, "driver", cfg.DBDriver, "database driver (sqlite or mysql)")
	root.PersistentFlags().StringVar(&a.dsn, "dsn", cfg.DBDSN, "database DSN")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log store activity")
	a.secret = cfg.JWTSecret

	root.AddCommand(
		a.listCmd(),
		a.showCmd(),
		a.exportCmd(),
		a.deleteCmd(),
		a.forkCmd(),
		a.duplicateCmd(),
		a.renameCmd(),
		a.usageCmd(),
		a.tokenCmd(),
	)
	return root
}
