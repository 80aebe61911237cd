package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pathweaver/internal/catalog"
	"pathweaver/internal/model"
)

var ingestReplace bool

// ingestCmd loads catalog and pathway data into the SQLite stores.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load catalog courses or pathway templates",
}

var ingestCatalogCmd = &cobra.Command{
	Use:   "catalog [feed.json]",
	Short: "Ingest a course catalog feed",
	Long: `Parses a catalog feed file and embeds every course into the index.
Rows without a usable subject, number or credit value are skipped and
counted. With --replace the index is rebuilt from scratch.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestCatalog,
}

var ingestPathwaysCmd = &cobra.Command{
	Use:   "pathways [templates.json]",
	Short: "Ingest pathway template documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestPathways,
}

func init() {
	ingestCatalogCmd.Flags().BoolVar(&ingestReplace, "replace", false, "rebuild the index instead of upserting")
	ingestCmd.AddCommand(ingestCatalogCmd)
	ingestCmd.AddCommand(ingestPathwaysCmd)
}

func runIngestCatalog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	courses, skipped, err := catalog.LoadFile(args[0])
	if err != nil {
		return err
	}
	logger.Info("catalog feed parsed",
		zap.Int("courses", len(courses)),
		zap.Int("skipped", skipped))

	st, err := newStack()
	if err != nil {
		return err
	}
	defer st.Close()

	if ingestReplace {
		err = st.index.ReplaceAll(ctx, courses)
	} else {
		err = st.index.Add(ctx, courses)
	}
	if err != nil {
		return err
	}

	total, err := st.index.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %d courses (%d rows skipped), index now holds %d\n",
		len(courses), skipped, total)
	return nil
}

func runIngestPathways(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var templates []model.PathwayTemplate
	if err := json.Unmarshal(data, &templates); err != nil {
		return fmt.Errorf("failed to parse pathway templates: %w", err)
	}

	st, err := newStack()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.store.Add(context.Background(), templates); err != nil {
		return err
	}
	fmt.Printf("Ingested %d pathway templates\n", len(templates))
	return nil
}
