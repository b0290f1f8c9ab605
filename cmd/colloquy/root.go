package main

import (
	"fmt"
	"os"

	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/internal/config"
	"github.com/spf13/cobra"
)

var (
	v   = config.New()
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "colloquy",
	Short: "Colloquy is a turn-based conversational bot",
	Long: `Colloquy registers the users it does not know through a short dialog
and echoes everyone else, keeping the state of every conversation in a
pluggable store (memory, file, Redis or DynamoDB).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(v, file)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildApp creates the bot described by the loaded configuration.
func buildApp(cmd *cobra.Command) (*cli.App, error) {
	return cli.Build(cmd.Context(), cfg)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: ./colloquy.yaml when present)")
	flags.String("env-file", ".env", "Dotenv file exported before reading the configuration")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.String("store", "memory", "State store backend (memory, file, redis, dynamodb)")
	flags.String("users-seed", "", "YAML file of pre-registered users")

	for key, flag := range map[string]string{
		"log.level":     "log-level",
		"log.format":    "log-format",
		"store.backend": "store",
		"users.seed":    "users-seed",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}
}
