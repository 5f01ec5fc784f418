package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "supportbot",
	Short: "Retrieval-augmented support assistant",
	Long: `supportbot answers customer questions from a folder of Markdown and text
documents. Run "ingest" to index the knowledge folder, then "serve" or "ask".`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(
		serveCmd,
		ingestCmd,
		askCmd,
		checkKeyCmd,
	)
	rootCmd.PersistentFlags().StringVarP(&envFile, "env", "e", ".env", "Environment file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
