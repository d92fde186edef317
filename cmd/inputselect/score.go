package main

import (
	"fmt"

	"github.com/ChizhovVadim/InputSelection/internal/dataset"
	"github.com/ChizhovVadim/InputSelection/pkg/selection"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

var (
	classification bool

	scoreCmd = &cobra.Command{
		Use:   "score",
		Short: "Print input/target correlations and inputs ranked by final score",
		RunE:  runScore,
	}
)

func init() {
	scoreCmd.Flags().BoolVar(&classification, "classification", false, "fit the logistic proxy instead of linear correlation")
}

func runScore(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	config, err := loadConfig()
	if err != nil {
		return err
	}
	if classification {
		config.Regression = false
	}
	ds, err := loadDataSet(logger)
	if err != nil {
		return err
	}

	var scorer = selection.NewScorer(ds, config, selection.WithScorerLogger(logger))
	correlations, err := scorer.ScoreAllInputs(cmd.Context())
	if err != nil {
		return err
	}
	var out = cmd.OutOrStdout()
	fmt.Fprintf(out, "%% Correlations (inputs x targets):\n%v\n", mat.Formatted(correlations, mat.Squeeze()))

	var scores = selection.SumScores(correlations)
	var names, uses = ds.Names(), ds.Uses()
	fmt.Fprintln(out, "% Final scores:")
	for _, i := range selection.RankInputs(scores) {
		fmt.Fprintf(out, "%-20v %.6f\n", names[dataset.InputIndex(uses, i)], scores[i])
	}
	var kept = selection.FilterByCorrelation(scores, len(ds.TargetIndices()), config)
	fmt.Fprintf(out, "%% Inputs within [%v, %v]: %v\n", config.MinimumCorrelation, config.MaximumCorrelation, kept)
	return nil
}
