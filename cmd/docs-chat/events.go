package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/iamvkosarev/docs-chat-assistant/internal/backend"
	"github.com/iamvkosarev/docs-chat-assistant/internal/model"
	"github.com/iamvkosarev/docs-chat-assistant/internal/stream"
	"github.com/iamvkosarev/docs-chat-assistant/internal/usecase"
	"github.com/iamvkosarev/docs-chat-assistant/pkg/local"
)

var eventsCmd = &cobra.Command{
	Use:   "events <message>",
	Short: "Send one message and print every decoded stream event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		page := usecase.DescribePage(pageFlag, local.ParseLanguage(cfg.Chat.Language))

		client := backend.NewClient(cfg.Backend)
		req := backend.NewChatRequest(
			[]backend.ChatMessage{{Role: model.MessageSourceUser.Role(), Content: args[0]}},
			page.ContextPath(),
			time.Now(),
		)
		body, err := client.OpenStream(cmd.Context(), req)
		if err != nil {
			return err
		}
		defer body.Close()

		return printEvents(cmd, cmd.OutOrStdout(), stream.NewDecoder(body))
	},
}

func printEvents(cmd *cobra.Command, out io.Writer, decoder *stream.Decoder) error {
	for result := range stream.Events(cmd.Context(), decoder) {
		if result.Err != nil {
			return result.Err
		}
		event := result.Event
		switch event.Kind {
		case model.StreamEventTextDelta:
			_, _ = fmt.Fprintf(out, "%s\t%q\n", event.Kind, event.Content)
		case model.StreamEventToolResult:
			_, _ = fmt.Fprintf(out, "%s\t%q\n", event.Kind, event.Payload)
		case model.StreamEventError:
			_, _ = fmt.Fprintf(out, "%s\t%q\n", event.Kind, event.Message)
		default:
			_, _ = fmt.Fprintf(out, "%s\n", event.Kind)
		}
	}
	return nil
}
