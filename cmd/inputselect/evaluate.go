package main

import (
	"fmt"

	"github.com/ChizhovVadim/InputSelection/internal/mlp"
	"github.com/ChizhovVadim/InputSelection/pkg/selection"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	maskFlag       string
	trials         int
	policyFlag     string
	algorithmFlag  string
	epochs         int
	hiddenNeurons  []int
	metricsOutPath string

	evaluateCmd = &cobra.Command{
		Use:   "evaluate",
		Short: "Train the model restricted to an input subset and report the outcome",
		RunE:  runEvaluate,
	}
)

func init() {
	var flags = evaluateCmd.Flags()
	flags.StringVar(&maskFlag, "mask", "", "input subset, 1,0,1 or 101; all inputs when empty")
	flags.IntVar(&trials, "trials", 0, "training trials, config value when 0")
	flags.StringVar(&policyFlag, "policy", "", "aggregation policy: minimum, maximum or mean")
	flags.StringVar(&algorithmFlag, "algorithm", selection.QuasiNewton.String(), "main training algorithm")
	flags.IntVar(&epochs, "epochs", 100, "epochs or major iterations of one trial")
	flags.IntSliceVar(&hiddenNeurons, "hidden", []int{4}, "hidden layer sizes")
	flags.BoolVar(&classification, "classification", false, "logistic output and proxy correlations")
	flags.StringVar(&metricsOutPath, "metrics-out", "", "write prometheus metrics to this file")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	config, err := loadConfig()
	if err != nil {
		return err
	}
	if trials != 0 {
		config.TrialsNumber = trials
	}
	if policyFlag != "" {
		if config.Policy, err = selection.ParseAggregationPolicy(policyFlag); err != nil {
			return err
		}
	}
	if classification {
		config.Regression = false
	}

	var trainerConfig = mlp.DefaultTrainerConfig()
	if trainerConfig.Algorithm, err = selection.ParseAlgorithmKind(algorithmFlag); err != nil {
		return err
	}
	trainerConfig.Epochs = epochs
	trainerConfig.HiddenNeurons = hiddenNeurons
	trainerConfig.Classification = classification
	trainerConfig.Seed = seed

	ds, err := loadDataSet(logger)
	if err != nil {
		return err
	}
	var mask = selection.NewInputMask(len(ds.InputIndices()))
	for i := range mask {
		mask[i] = true
	}
	if maskFlag != "" {
		if mask, err = selection.ParseInputMask(maskFlag); err != nil {
			return err
		}
	}

	trainer, err := mlp.Build(ds, trainerConfig, logger)
	if err != nil {
		return err
	}
	var registry = prometheus.NewRegistry()
	runner, err := selection.NewRunner(trainer, config,
		selection.WithLogger(logger),
		selection.WithMetrics(selection.NewMetrics(registry)))
	if err != nil {
		return err
	}
	if err := runner.Check(); err != nil {
		return err
	}

	evaluation, err := runner.Evaluate(cmd.Context(), mask)
	if err != nil {
		return err
	}
	var out = cmd.OutOrStdout()
	fmt.Fprintf(out, "%% Inputs:\n%v\n", mask)
	fmt.Fprintf(out, "%% Training performance:\n%v\n", evaluation.Outcome.Training)
	fmt.Fprintf(out, "%% Selection performance:\n%v\n", evaluation.Outcome.Selection)
	fmt.Fprintf(out, "%% Parameters:\n%v\n", len(evaluation.Parameters))
	if len(ds.TestingIndices()) != 0 {
		testingLoss, err := trainer.TestingLoss(evaluation.Parameters)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%% Testing performance:\n%v\n", testingLoss)
	}
	fmt.Fprint(out, selection.NewResults(runner.History(), config))

	if metricsOutPath != "" {
		if err := prometheus.WriteToTextfile(metricsOutPath, registry); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logger.Info("metrics written", zap.String("path", metricsOutPath))
	}
	return nil
}
