package evaluation

import (
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/ahp"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/config"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/sensitivity"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/topsis"
)

// Settings are the engine parameters shared by every evaluation.
type Settings struct {
	Weighting ahp.Options
	Ranking   topsis.Options

	Range                   float64
	Steps                   int
	Workers                 int
	MonteCarloIterations    int
	MonteCarloConcentration float64
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.Default())
}

func SettingsFromConfig(cfg *config.Config) Settings {
	e := cfg.Engine
	return Settings{
		Weighting: ahp.Options{
			Synthesis:   ahp.Synthesis(e.Synthesis),
			Defuzzifier: ahp.Defuzzifier(e.ConsistencyDefuzzifier),
			Threshold:   e.ConsistencyThreshold,
			Tolerance:   e.WeightTolerance,
		},
		Ranking: topsis.Options{
			Scale:           topsis.Scale{Min: e.RatingMin, Max: e.RatingMax},
			TieTolerance:    e.TieTolerance,
			WeightTolerance: e.WeightTolerance,
		},
		Range:                   cfg.Sensitivity.Range,
		Steps:                   cfg.Sensitivity.Steps,
		Workers:                 cfg.Sensitivity.Workers,
		MonteCarloIterations:    cfg.Sensitivity.MonteCarloIterations,
		MonteCarloConcentration: cfg.Sensitivity.MonteCarloConcentration,
	}
}

// SweepOptions returns sensitivity options bound to these settings.
func (s Settings) SweepOptions(progress sensitivity.ProgressFunc) sensitivity.Options {
	return sensitivity.Options{Workers: s.Workers, Progress: progress, Ranking: s.Ranking}
}

func (s Settings) tolerance() float64 {
	if s.Weighting.Tolerance > 0 {
		return s.Weighting.Tolerance
	}
	return 1e-6
}
