package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/itish2003/supportbot/config"
)

const keyPrefixLen = 10

var checkKeyProvider string

var checkKeyCmd = &cobra.Command{
	Use:   "check-key",
	Short: "Show which API key was loaded without printing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Parse(envFile)
		if err != nil {
			return err
		}
		provider := checkKeyProvider
		if provider == "" {
			provider = cfg.ChatProvider
		}
		return printKeyInfo(cmd.OutOrStdout(), cfg, provider)
	},
}

func init() {
	checkKeyCmd.Flags().StringVarP(&checkKeyProvider, "provider", "p", "", "Provider whose key to check (defaults to RAG_CHAT_PROVIDER)")
}

func printKeyInfo(w io.Writer, cfg *config.Config, provider string) error {
	name, key := cfg.Credential(provider)
	if name == "" {
		_, err := fmt.Fprintf(w, "Provider %q does not use an API key\n", provider)
		return err
	}
	_, err := fmt.Fprintf(w, "%s prefix: %s (length: %d)\n", name, key[:min(keyPrefixLen, len(key))], len(key))
	return err
}
