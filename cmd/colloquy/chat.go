package main

import (
	"os"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/cli"
	"github.com/aretw0/colloquy/internal/presentation/tui"
	"github.com/aretw0/colloquy/pkg/runner"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot from the console",
	Long: `Every line typed becomes one message of a single conversation.
Type "/event <type>" to send a non-message activity and "exit" to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, _ := cmd.Flags().GetString("channel")
		conversation, _ := cmd.Flags().GetString("conversation")
		userID, _ := cmd.Flags().GetString("user")
		userName, _ := cmd.Flags().GetString("name")
		jsonMode, _ := cmd.Flags().GetBool("json")

		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var handler runner.IOHandler
		if jsonMode {
			handler = runner.NewJSONHandler(os.Stdin, os.Stdout)
		} else {
			handler = runner.NewTextHandler(os.Stdin, os.Stdout, runner.WithTextHandlerRenderer(tui.NewRenderer()))
			if h, ok := handler.(*runner.TextHandler); ok && h.Interactive {
				tui.PrintBanner(os.Stdout, colloquy.Version)
			}
		}

		r := runner.New(app.Bot,
			runner.WithLogger(app.Logger),
			runner.WithConversation(channel, conversation),
			runner.WithUser(userID, userName),
			runner.WithInputHandler(handler),
		)

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.HandleExecutionError(r.Run(ctx))
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("channel", "console", "Channel id of the conversation")
	chatCmd.Flags().String("conversation", "local", "Conversation id")
	chatCmd.Flags().String("user", "console-user", "Id of the user you speak as")
	chatCmd.Flags().String("name", "You", "Display name of the user you speak as")
	chatCmd.Flags().Bool("json", false, "Read JSON strings and write replies as JSON lines")
}
