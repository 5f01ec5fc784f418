package main

import (
	"fmt"

	"github.com/kart-io/logger"
	"github.com/spf13/cobra"

	"github.com/itish2003/supportbot/services"
)

var (
	ingestDir   string
	ingestWatch bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index the knowledge folder into the vector store",
	Long: `Reads every .md and .txt file under the knowledge folder, splits it into
chunks and replaces the collection contents with them. With --watch the
command keeps running and re-indexes files as they change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := boot()
		if err != nil {
			return err
		}
		dir := ingestDir
		if dir == "" {
			dir = cfg.KnowledgeDir
		}
		ctx := cmd.Context()

		// Documents are read before the store is opened so an empty folder
		// leaves the store untouched.
		chunker, err := services.NewChunker(cfg.ChunkStrategy, cfg.ChunkMaxChars, cfg.ChunkOverlap)
		if err != nil {
			return err
		}
		logger.Infof("INDEXER: Loading documents from %s", dir)
		chunks, err := services.NewFileIndexingService(nil, chunker, nil).LoadDocuments(dir)
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			logger.Warnf("INDEXER: No docs found in '%s'", dir)
			fmt.Fprintf(cmd.OutOrStdout(), "No docs found in '%s'\n", dir)
			if !ingestWatch {
				return nil
			}
		}

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		indexer := a.indexer()
		if len(chunks) > 0 {
			n, err := indexer.Replace(ctx, chunks)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done. Added %d chunks.\n", n)
		}

		if ingestWatch {
			return indexer.WatchDirectory(ctx, dir)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestDir, "dir", "d", "", "Knowledge folder (defaults to RAG_KNOWLEDGE_DIR)")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "Keep running and re-index files as they change")
}
