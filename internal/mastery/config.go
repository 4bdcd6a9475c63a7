package mastery

// Config tunes the mastery deltas and the optimistic-write retry budget.
// Deltas are stored as magnitudes; the updater applies the sign.
type Config struct {
	// First-exposure seeds.
	InitialCorrect   float64 `yaml:"initial_correct"`
	InitialIncorrect float64 `yaml:"initial_incorrect"`

	// Flashcard / short-review path.
	CorrectDelta   float64 `yaml:"correct_delta"`
	IncorrectDelta float64 `yaml:"incorrect_delta"`

	// Score-weighted path for graded answers.
	GradedCorrectBase     float64 `yaml:"graded_correct_base"`
	GradedScoreWeight     float64 `yaml:"graded_score_weight"`
	GradedIncorrectBase   float64 `yaml:"graded_incorrect_base"`
	GradedIncorrectWeight float64 `yaml:"graded_incorrect_weight"`
	FastAnswerBonus       float64 `yaml:"fast_answer_bonus"`
	FastAnswerMs          int64   `yaml:"fast_answer_ms"`

	// Open knowledge gaps resolve once mastery recovers past this level.
	GapResolveThreshold float64 `yaml:"gap_resolve_threshold"`

	MaxAttempts int `yaml:"max_attempts"`
}

func DefaultConfig() Config {
	return Config{
		InitialCorrect:        0.3,
		InitialIncorrect:      0.1,
		CorrectDelta:          0.05,
		IncorrectDelta:        0.1,
		GradedCorrectBase:     0.05,
		GradedScoreWeight:     0.10,
		GradedIncorrectBase:   0.10,
		GradedIncorrectWeight: 0.10,
		FastAnswerBonus:       0.02,
		FastAnswerMs:          10_000,
		GapResolveThreshold:   0.5,
		MaxAttempts:           3,
	}
}
