package main

import (
	"fmt"
	"os"

	"github.com/ChizhovVadim/InputSelection/internal/dataset"
	"github.com/ChizhovVadim/InputSelection/pkg/selection"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose        bool
	configPath     string
	dataPath       string
	targets        []string
	trainingRatio  float64
	selectionRatio float64
	seed           int64

	rootCmd = &cobra.Command{
		Use:           "inputselect",
		Short:         "Score and evaluate input subsets of a tabular data set",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	var flags = rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "development logging")
	flags.StringVar(&configPath, "config", "", "selection config (yaml)")
	flags.StringVar(&dataPath, "data", "", "data set (csv with header)")
	flags.StringSliceVar(&targets, "target", nil, "target column, may be repeated")
	flags.Float64Var(&trainingRatio, "training-ratio", 0.6, "share of instances used for training")
	flags.Float64Var(&selectionRatio, "selection-ratio", 0.2, "share of instances held out for selection")
	flags.Int64Var(&seed, "seed", 1, "random seed")
	rootCmd.MarkPersistentFlagRequired("data")
	rootCmd.MarkPersistentFlagRequired("target")

	rootCmd.AddCommand(scoreCmd, evaluateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadConfig() (selection.Config, error) {
	if configPath == "" {
		return selection.DefaultConfig(), nil
	}
	return selection.LoadConfig(configPath)
}

// loadDataSet reads, splits and scales the data set given by the global flags.
func loadDataSet(logger *zap.Logger) (*dataset.DataSet, error) {
	ds, err := dataset.LoadCSV(dataPath, targets)
	if err != nil {
		return nil, err
	}
	if err := ds.Split(trainingRatio, selectionRatio, seed); err != nil {
		return nil, err
	}
	ds.ScaleInputsMinimumMaximum()
	logger.Info("data set loaded",
		zap.String("path", dataPath),
		zap.Int("instances", ds.SampleCount()),
		zap.Int("inputs", len(ds.InputIndices())),
		zap.Int("targets", len(ds.TargetIndices())),
		zap.Int("selection", ds.HeldOutSampleCount()))
	return ds, nil
}
