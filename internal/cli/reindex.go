package cli

import (
	"context"
	"fmt"

	"github.com/qanooni-ai/qanooni/internal/config"
	"github.com/spf13/cobra"
)

// ReindexCmd returns the reindex command
func ReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the embedding index",
		Long:  "Load the knowledge base from disk, rebuild the embedding index and rewrite the cache file",
		RunE:  runReindex,
	}
}

func runReindex(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc, _, err := newIndexService(cfg)
	if err != nil {
		return err
	}

	info, err := svc.Reindex(context.Background())
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	fmt.Printf("Index rebuilt: %d files, %d chunks (built at %s)\n",
		info.FileCount, info.ChunkCount, info.BuiltAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
