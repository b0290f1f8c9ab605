package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Manage persisted conversations",
	Long:    `List, inspect and reset the conversation state kept by the configured store.`,
}

var sessionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		keys, err := app.Bot.Sessions().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}
		if len(keys) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No conversations found.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Conversations:")
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+k)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:     "show <channel>/<conversation>",
	Aliases: []string{"inspect"},
	Short:   "Print the state of a conversation",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseKey(args[0])
		if err != nil {
			return err
		}
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		snap, err := app.Bot.Sessions().Load(cmd.Context(), key.String())
		if err != nil {
			return fmt.Errorf("error loading conversation '%s': %w", key, err)
		}
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling state: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionsResetCmd = &cobra.Command{
	Use:     "reset <channel>/<conversation>...",
	Aliases: []string{"rm"},
	Short:   "Drop the state of one or more conversations",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var errs []error
		for _, arg := range args {
			key, err := parseKey(arg)
			if err == nil {
				err = app.Bot.ResetConversation(cmd.Context(), key)
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("error resetting '%s': %w", arg, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset conversation '%s'\n", key)
		}
		return errors.Join(errs...)
	},
}

func parseKey(s string) (domain.ConversationKey, error) {
	key, ok := domain.ParseConversationKey(s)
	if !ok {
		return domain.ConversationKey{}, fmt.Errorf("conversation must be <channel>/<conversation>, got %q", s)
	}
	return key, nil
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsResetCmd)
}
