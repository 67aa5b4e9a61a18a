package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/booking-sync/internal/booking"
)

var replayCmd = &cobra.Command{
	Use:   "replay <mailbox> <payload.json>",
	Short: "Process a saved webhook payload and print the result",
	Long:  "Runs one stored booking notification through the sync as if it had been posted to /<mailbox>. Combine with --noop to see the CRM writes without sending them.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newSyncApp(cfg)
		if err != nil {
			return err
		}

		f, err := os.Open(args[1])
		if err != nil {
			return eris.Wrap(err, "open payload")
		}
		defer f.Close() //nolint:errcheck

		return runReplay(cmd.Context(), app, args[0], f, cmd.OutOrStdout())
	},
}

func runReplay(ctx context.Context, app *syncApp, mailbox string, payload io.Reader, out io.Writer) error {
	route, syncer, ok := app.syncerFor(mailbox)
	if !ok {
		return eris.Errorf("replay: unknown mailbox %s", mailbox)
	}

	b, err := booking.Decode(payload)
	if err != nil {
		return eris.Wrap(err, "replay: decode payload")
	}
	b.Mailbox = route.Mailbox

	res, err := syncer.Process(ctx, b, route.OwnerEmail)
	if err != nil {
		return eris.Wrap(err, "replay")
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
