/*
Package runner drives a conversation with the bot from a console or a pipe.

Every line read from the IOHandler becomes one message activity of a single
conversation; the replies of the turn are written back through the same
handler. A line of the form "/event <type>" sends a non-message activity
instead, and "exit" or "quit" ends the loop.

# Usage

	r := runner.New(bot,
		runner.WithConversation("console", "local"),
		runner.WithUser("console-user", "You"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
