package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iamvkosarev/docs-chat-assistant/config"
	"github.com/iamvkosarev/docs-chat-assistant/internal/app"
	"github.com/iamvkosarev/docs-chat-assistant/internal/observability"
)

var (
	configFlag string
	pageFlag   string
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "docs-chat",
	Short: "Terminal client for the documentation site assistant",
	Long: `docs-chat talks to the documentation assistant backend and streams its
answers into the terminal. Every line typed is sent as a message.

Examples:
  docs-chat --page /docs/intro          Ask about a docs page
  docs-chat --config config/config.yaml Use a config file
  docs-chat events "What is this?"      Print the decoded stream of one answer

Type /open or /close to toggle the saved window flag. End input (Ctrl-D)
to leave; a closed session is then removed from storage.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return app.Run(
			ctx, cfg, app.Options{
				PagePath: pageFlag,
				Input:    cmd.InOrStdin(),
				Output:   cmd.OutOrStdout(),
			},
		)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path to a yaml config file")
	rootCmd.PersistentFlags().StringVarP(&pageFlag, "page", "p", "/", "site path the reader is looking at")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.AddCommand(eventsCmd)
	rootCmd.SetContext(context.Background())
}

func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	if debugFlag {
		observability.SetLogger(
			slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
		)
	}

	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
