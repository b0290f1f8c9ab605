package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage registered users",
}

var usersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registered users",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		users, err := app.Directory.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing users: %w", err)
		}
		if len(users) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No registered users found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CHANNEL\tUSER\tNAME\tCALL NAME")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ChannelID, u.UserID, u.Name, u.CallName)
		}
		return w.Flush()
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add <channel> <user> <name> [call-name]",
	Short: "Register a user",
	Args:  cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := domain.UserRecord{ChannelID: args[0], UserID: args[1], Name: args[2]}
		if len(args) == 4 {
			rec.CallName = args[3]
		}

		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Directory.Add(cmd.Context(), rec); err != nil {
			return fmt.Errorf("error adding user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", rec.Key())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddCmd)
}
