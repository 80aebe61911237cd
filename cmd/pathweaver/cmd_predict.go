package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var predictPathwayID string

// predictCmd completes a pathway from the command line.
var predictCmd = &cobra.Command{
	Use:   "predict [query...]",
	Short: "Complete a degree pathway for a free-text query",
	Long: `Retrieves the pathway template most similar to the query, resolves
every requirement against the course catalog and prints the completed
plan as JSON. With --pathway a specific template is completed instead
and the query only steers ranking and the narrative summary.

Example:
  pathweaver predict "I want to study marine biology"
  pathweaver predict --pathway bs-cs-2026 "transfer student, strong math"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictPathwayID, "pathway", "", "complete this template id instead of the best match")
}

func runPredict(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	st, err := newStack()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	completed, err := func() (any, error) {
		if predictPathwayID != "" {
			return st.engine.PredictByID(ctx, predictPathwayID, query)
		}
		return st.engine.Predict(ctx, query)
	}()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(completed)
}
