package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itish2003/supportbot/models"
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION",
	Short: "Answer one question and print the JSON response",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := boot()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		resp, err := a.ragService().Ask(ctx, models.AskRequest{Question: strings.Join(args, " ")})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}
