package srs

// Params tunes the scheduler. The coefficients are empirical; the defaults
// keep the rating ordering (easy > good > hard > again in resulting stability)
// for any well-formed review.
type Params struct {
	// Initial stability in days after the first graded review, as a linear
	// ramp over the rating.
	InitStabilityBase float64 `yaml:"init_stability_base"`
	InitStabilityStep float64 `yaml:"init_stability_step"`

	// Initial difficulty as a linear ramp centered on a Good first answer.
	InitDifficultyBase float64 `yaml:"init_difficulty_base"`
	InitDifficultyStep float64 `yaml:"init_difficulty_step"`

	// Difficulty drift per rating step away from Good, plus mean reversion
	// toward the midpoint.
	DifficultyDelta     float64 `yaml:"difficulty_delta"`
	DifficultyReversion float64 `yaml:"difficulty_reversion"`
	MinDifficulty       float64 `yaml:"min_difficulty"`
	MaxDifficulty       float64 `yaml:"max_difficulty"`

	// Stability growth on successful reviews.
	GrowthScale        float64 `yaml:"growth_scale"`
	GrowthDecay        float64 `yaml:"growth_decay"`
	RetrievabilityGain float64 `yaml:"retrievability_gain"`
	HardPenalty        float64 `yaml:"hard_penalty"`
	EasyBonus          float64 `yaml:"easy_bonus"`

	// Stability collapse on a forgotten card.
	AgainShrink  float64 `yaml:"again_shrink"`
	MinStability float64 `yaml:"min_stability"`

	// Cards graduate from (re)learning to review once stability reaches this
	// many days; below it they stay on short intra-day steps.
	GraduationStability   float64 `yaml:"graduation_stability"`
	LearningStepMinutes   float64 `yaml:"learning_step_minutes"`
	RelearningStepMinutes float64 `yaml:"relearning_step_minutes"`

	MaxIntervalDays float64 `yaml:"max_interval_days"`
}

// DefaultTargetRetention is the retrievability most callers schedule for.
const DefaultTargetRetention = 0.9

func DefaultParams() Params {
	return Params{
		InitStabilityBase:     0.4,
		InitStabilityStep:     1.2,
		InitDifficultyBase:    5.8,
		InitDifficultyStep:    0.8,
		DifficultyDelta:       0.9,
		DifficultyReversion:   0.08,
		MinDifficulty:         1.0,
		MaxDifficulty:         10.0,
		GrowthScale:           0.55,
		GrowthDecay:           0.15,
		RetrievabilityGain:    1.6,
		HardPenalty:           0.55,
		EasyBonus:             1.45,
		AgainShrink:           0.45,
		MinStability:          0.1,
		GraduationStability:   1.0,
		LearningStepMinutes:   10,
		RelearningStepMinutes: 15,
		MaxIntervalDays:       365,
	}
}
