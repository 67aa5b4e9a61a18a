package main

import (
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/booking-sync/internal/config"
)

const redacted = "REDACTED"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpConfig(cfg, cmd.OutOrStdout())
	},
}

func dumpConfig(c *config.Config, w io.Writer) error {
	out := *c
	out.HubSpot.Token = redact(out.HubSpot.Token)
	out.Sentry.DSN = redact(out.Sentry.DSN)
	out.Routing.Mailboxes = make([]config.MailboxConfig, len(c.Routing.Mailboxes))
	for i, mb := range c.Routing.Mailboxes {
		mb.Token = redact(mb.Token)
		out.Routing.Mailboxes[i] = mb
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return redacted
}

func init() {
	rootCmd.AddCommand(configCmd)
}
