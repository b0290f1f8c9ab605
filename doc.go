/*
Package colloquy is a turn-based conversational engine built around a dialog stack.

For each inbound activity the Bot resumes the dialog on top of the conversation's
stack, or decides what to start, and produces the replies of the turn. All
conversation state (the dialog stack, the greeting state and the echo counter)
is persisted per conversation and committed once at the end of each turn.

# Concept

A turn is synchronous and self-contained. Dialogs suspend by prompting: the turn
ends, and the next message of the conversation resumes the dialog from its
persisted frame. Nothing stays in memory between turns, so any replica can serve
the next message as long as it shares the state store.

The bundled orchestrator implements a greeting flow:

  - a first-time user is asked for a name and a call name, then registered;
  - a registered user is welcomed back by call name;
  - a greeted user gets an echo annotated with a turn counter.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/colloquy"
		"github.com/aretw0/colloquy/pkg/domain"
	)

	func main() {
		bot := colloquy.New()
		ctx := context.Background()

		replies, err := bot.ProcessTurn(ctx, domain.Activity{
			Type:           domain.ActivityMessage,
			ChannelID:      "console",
			ConversationID: "local",
			From:           domain.Account{ID: "user-1", Name: "Ada"},
			Text:           "Hi",
		})
		if err != nil {
			log.Fatal(err)
		}
		for _, r := range replies {
			fmt.Println(r.Text)
		}
	}

State backends (memory, file, Redis, DynamoDB) and the registration directory are
injected with WithStore and WithDirectory. See the pkg/adapters packages.
*/
package colloquy
