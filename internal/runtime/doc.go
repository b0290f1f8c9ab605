// Package runtime holds the turn orchestrator of the greeting bot: resume an
// active dialog, welcome back or register the user, then echo.
package runtime
