package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/bnema/adminkit/internal/adapters/realtime"
	"github.com/spf13/cobra"
)

func newListenCmd(app *app) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print push notifications for the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireAuthenticated(app); err != nil {
				return err
			}
			return runListen(cmd, app, count)
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "Stop after N messages (0 listens until interrupted)")

	return cmd
}

func runListen(cmd *cobra.Command, app *app, count int) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	messages := make(chan realtime.Envelope, 16)
	binder := realtime.NewBinder(app.realtime, app.logger.With().Str("component", "listen").Logger(), func(env realtime.Envelope) {
		select {
		case messages <- env:
		case <-ctx.Done():
		}
	})

	if err := binder.Open(ctx, app.session.Credential()); err != nil {
		return fmt.Errorf("open realtime channel: %w", err)
	}
	defer func() { _ = binder.Close() }()

	enc := json.NewEncoder(cmd.OutOrStdout())
	poll := time.NewTicker(250 * time.Millisecond)
	defer poll.Stop()

	received := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-messages:
			if err := enc.Encode(env); err != nil {
				return err
			}
			received++
			if count > 0 && received >= count {
				return nil
			}
		case <-poll.C:
			if !binder.Connected() && len(messages) == 0 {
				return fmt.Errorf("realtime channel closed after %d messages", received)
			}
		}
	}
}

