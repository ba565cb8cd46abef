// Package cmd holds the elaina command line: the bot itself plus maintenance commands.
package cmd

import (
	"context"
	"fmt"
	"strconv"

	"elaina/database"

	"github.com/spf13/cobra"
)

// Execute runs the command line against ctx, which is cancelled on shutdown signals
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "elaina",
		Short:         "Discord bot with casino games, moderation and server utilities",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Connect to Discord and serve commands (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return Run(cmd.Context())
			},
		},
		newMigrateCommand(),
		newUpdateBalanceCommand(),
	)
	return root
}

func newMigrateCommand() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return database.MigrateUp()
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations, one by default",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := "1"
				if len(args) == 1 {
					steps = args[0]
				}
				return database.MigrateDown(steps)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return database.MigrateStatus()
			},
		},
	)
	return migrate
}

func newUpdateBalanceCommand() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "update-balance <guild-id> <user-id> <amount>",
		Short: "Adjust a user's balance by amount and record it in the ledger",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 3)
			for n, arg := range args {
				v, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid argument %q: %w", arg, err)
				}
				ids[n] = v
			}
			return UpdateBalance(cmd.Context(), ids[0], ids[1], ids[2], reason)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "manual adjustment", "reason stored with the ledger entry")
	return cmd
}
