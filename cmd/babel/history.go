package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/babel/internal/conversation"
	"github.com/MikeSquared-Agency/babel/internal/kv"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or reset a session's stored conversation",
	}
	cmd.AddCommand(historyShowCmd(), historyClearCmd())
	return cmd
}

func historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <sessionId>",
		Short: "Print a session's conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(store *conversation.Store) error {
				history, err := store.History(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printHistory(cmd.OutOrStdout(), history)
				return nil
			})
		},
	}
}

func historyClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <sessionId>",
		Short: "Reset a session's conversation to empty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(store *conversation.Store) error {
				if err := store.Clear(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", args[0])
				return nil
			})
		},
	}
}

// withStore opens the configured backend for a one-shot command. Events are
// not published from the CLI.
func withStore(ctx context.Context, fn func(*conversation.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	kvStore, err := kv.Open(ctx, storeOptions(cfg))
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	defer kvStore.Close()

	return fn(conversation.NewStore(kvStore, nil, slog.Default()))
}

var (
	userLabel = color.New(color.FgCyan, color.Bold).SprintFunc()
	aiLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
)

func printHistory(w io.Writer, history []conversation.Message) {
	if len(history) == 0 {
		fmt.Fprintln(w, dim("(no messages)"))
		return
	}
	for _, msg := range history {
		ts := time.UnixMilli(msg.Timestamp).Format(time.RFC3339)
		switch msg.Role {
		case conversation.RoleUser:
			fmt.Fprintf(w, "%s %s %s\n", dim(ts), userLabel("User:"), msg.Text)
		case conversation.RoleAI:
			lang := ""
			if msg.Language != "" {
				lang = dim("[" + msg.Language + "] ")
			}
			fmt.Fprintf(w, "%s %s %s%s\n", dim(ts), aiLabel("AI:"), lang, msg.Text)
		default:
			fmt.Fprintf(w, "%s %s: %s\n", dim(ts), string(msg.Role), msg.Text)
		}
	}
}
