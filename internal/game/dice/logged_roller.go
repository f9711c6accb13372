package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every game roll leaves a debug trace.
// Roller itself satisfies Source and can be handed to anything that takes one.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn delegates to the wrapped source and logs the value.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice roll", zap.Int("n", n), zap.Int("value", v))
	return v
}

// Chance performs a percentile check and logs the outcome.
//
// Postcondition: result logged at debug level; returns the CheckResult.
func (r *Roller) Chance(reason string, percent int) CheckResult {
	result := Check(r.src, reason, percent)
	r.logger.Debug("dice check",
		zap.String("reason", result.Reason),
		zap.Int("percent", result.Percent),
		zap.Int("roll", result.Roll),
		zap.Bool("success", result.Success),
	)
	return result
}

// Pick returns a uniformly chosen index in [0, n).
//
// Precondition: n > 0.
func (r *Roller) Pick(reason string, n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice pick", zap.String("reason", reason), zap.Int("n", n), zap.Int("index", v))
	return v
}
