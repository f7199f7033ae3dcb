// Package filtering prunes the missing-skill list before it is reported.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/divya16-bit/ApplyBee/internal/normalizer"
)

// Filter represents a single filtering step applied to missing skills.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, skills []string) ([]string, Step, error)
}

// Categorizer is the part of the skill normalizer the category step needs.
type Categorizer interface {
	Normalize(ctx context.Context, raw []string, threshold float64) ([]normalizer.NormalizedSkill, error)
}

// Deps is what a step may call while it runs.
type Deps struct {
	Logger     *zap.Logger
	Normalizer Categorizer
}

// Step records how many skills a step received and how many it dropped.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config holds the limits the steps read in Validate.
type Config struct {
	// MaxLength is the longest skill kept, in characters.
	MaxLength int
	// CategoryThreshold is passed to the normalizer by the category step.
	CategoryThreshold float64
	// ScoreFloor keeps "other" skills whose similarity still reaches it.
	ScoreFloor float64
}

// DefaultConfig returns the stock limits.
func DefaultConfig() *Config {
	return &Config{
		MaxLength:         30,
		CategoryThreshold: 0.4,
		ScoreFloor:        0.1,
	}
}

// Status is the diagnostic view of one step.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by steps with settings worth reporting.
type statusProvider interface {
	Status() Status
}

// Default returns the standard pipeline in execution order.
func Default() []Filter {
	return []Filter{
		NewLength(),
		NewNoise(),
		NewUmbrella(),
		NewCategory(),
	}
}

// DisableByName switches off the named step but leaves it in steps so
// Describe still lists it with the reason.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the surviving
// skills in their original order.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, skills []string) ([]string, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, skills)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		skills = next
	}

	return skills, nil
}

// Describe reports every step, enabled or not, for diagnostics.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns the skills for which fn reports true along with the dropped ones.
func keep(skills []string, fn func(string) bool) (kept, dropped []string) {
	kept = make([]string, 0, len(skills))
	for _, s := range skills {
		if fn(s) {
			kept = append(kept, s)
			continue
		}
		dropped = append(dropped, s)
	}
	return kept, dropped
}

func stepOf(initial, left int) Step {
	return Step{Initial: initial, Dropped: initial - left, Left: left}
}
