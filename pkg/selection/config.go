package selection

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by every search strategy built on the core.
// Budgets (iterations, time, goal) are advisory: the core reports them through
// StopCondition but never interrupts an evaluation.
type Config struct {
	TrialsNumber int               `yaml:"trials_number" validate:"gte=1"`
	Policy       AggregationPolicy `yaml:"performance_calculation_method" validate:"gte=0,lte=2"`

	ReserveParametersData           bool `yaml:"reserve_parameters_data"`
	ReservePerformanceData          bool `yaml:"reserve_performance_data"`
	ReserveSelectionPerformanceData bool `yaml:"reserve_selection_performance_data"`
	ReserveMinimalParameters        bool `yaml:"reserve_minimal_parameters"`

	SelectionPerformanceGoal float64       `yaml:"selection_performance_goal" validate:"gte=0"`
	MaximumIterationsNumber  int           `yaml:"maximum_iterations_number" validate:"gte=0"`
	MaximumTime              time.Duration `yaml:"maximum_time" validate:"gte=0"`
	MaximumCorrelation       float64       `yaml:"maximum_correlation" validate:"gte=0,lte=1"`
	MinimumCorrelation       float64       `yaml:"minimum_correlation" validate:"gte=0,lte=1,ltefield=MaximumCorrelation"`
	Tolerance                float64       `yaml:"tolerance" validate:"gte=0"`

	// Regression selects the plain linear correlation, otherwise the logistic proxy is fitted.
	Regression bool `yaml:"regression"`
	Display    bool `yaml:"display"`
	Threads    int  `yaml:"threads" validate:"gte=1"`
}

var configValidate = validator.New()

func DefaultConfig() Config {
	return Config{
		TrialsNumber: 1,
		Policy:       Minimum,

		ReserveParametersData:           true,
		ReservePerformanceData:          true,
		ReserveSelectionPerformanceData: true,
		ReserveMinimalParameters:        true,

		SelectionPerformanceGoal: 0,
		MaximumIterationsNumber:  1000,
		MaximumTime:              10000 * time.Second,
		MaximumCorrelation:       1,
		MinimumCorrelation:       0,
		Tolerance:                1e-3,

		Regression: true,
		Display:    true,
		Threads:    runtime.NumCPU(),
	}
}

func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	var config = DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %v: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config %v: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StopCondition reports which advisory budget a search loop has reached.
func (c Config) StopCondition(iteration int, elapsed time.Duration, selectionPerformance float64) (StoppingCondition, bool) {
	if c.MaximumTime > 0 && elapsed >= c.MaximumTime {
		return MaximumTime, true
	}
	if selectionPerformance <= c.SelectionPerformanceGoal {
		return SelectionPerformanceGoal, true
	}
	if c.MaximumIterationsNumber > 0 && iteration >= c.MaximumIterationsNumber {
		return MaximumIterations, true
	}
	return AlgorithmFinished, false
}
