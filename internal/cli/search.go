package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/qanooni-ai/qanooni/internal/config"
	"github.com/spf13/cobra"
)

// SearchCmd returns the search command
func SearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
		Long:  "Embed the query and print the best matching documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().Bool("json", false, "Print matches as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc, _, err := newIndexService(cfg)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	matches, _, err := svc.Search(context.Background(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}

	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for i, m := range matches {
		fmt.Printf("%d. %s (%s, version %s, as of %s) score=%.3f\n",
			i+1, m.Title, m.Jurisdiction, m.Version, m.AsOf, m.Score)
		if m.Summary.EN != "" {
			fmt.Printf("   %s\n", m.Summary.EN)
		}
		if m.Summary.AR != "" {
			fmt.Printf("   %s\n", m.Summary.AR)
		}
	}
	return nil
}
