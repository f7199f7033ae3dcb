package filtering

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/divya16-bit/ApplyBee/internal/normalizer"
	"github.com/divya16-bit/ApplyBee/internal/skills"
)

type lengthFilter struct {
	max int
}

// NewLength creates a filter that drops skills longer than the configured
// maximum. Long entries are almost always sentence fragments.
func NewLength() Filter {
	return &lengthFilter{}
}

func (f *lengthFilter) Name() string { return "length" }

func (f *lengthFilter) Disable(string) {}

func (f *lengthFilter) IsEnabled() bool { return true }

func (f *lengthFilter) Validate(cfg *Config) error {
	if cfg.MaxLength <= 0 {
		return fmt.Errorf("max length must be positive, got %d", cfg.MaxLength)
	}
	f.max = cfg.MaxLength
	return nil
}

func (f *lengthFilter) Apply(_ context.Context, deps Deps, in []string) ([]string, Step, error) {
	out, dropped := keep(in, func(s string) bool {
		return utf8.RuneCountInString(strings.TrimSpace(s)) <= f.max
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("dropping overlong skills", zap.Strings("skills", dropped))
	}
	return out, stepOf(len(in), len(out)), nil
}

func (f *lengthFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{"max_length": strconv.Itoa(f.max)}}
}

type noiseFilter struct{}

// NewNoise creates a filter that drops boilerplate tokens such as social
// network names.
func NewNoise() Filter {
	return &noiseFilter{}
}

func (f *noiseFilter) Name() string { return "noise" }

func (f *noiseFilter) Disable(string) {}

func (f *noiseFilter) IsEnabled() bool { return true }

func (f *noiseFilter) Validate(*Config) error { return nil }

func (f *noiseFilter) Apply(_ context.Context, _ Deps, in []string) ([]string, Step, error) {
	out, _ := keep(in, func(s string) bool {
		return !skills.IsNoise(strings.ToLower(strings.TrimSpace(s)))
	})
	return out, stepOf(len(in), len(out)), nil
}

type umbrellaFilter struct{}

// NewUmbrella creates a filter that drops terms too broad to act on, like
// "frontend" or "devops".
func NewUmbrella() Filter {
	return &umbrellaFilter{}
}

func (f *umbrellaFilter) Name() string { return "umbrella" }

func (f *umbrellaFilter) Disable(string) {}

func (f *umbrellaFilter) IsEnabled() bool { return true }

func (f *umbrellaFilter) Validate(*Config) error { return nil }

func (f *umbrellaFilter) Apply(_ context.Context, deps Deps, in []string) ([]string, Step, error) {
	out, dropped := keep(in, func(s string) bool {
		return !skills.IsUmbrella(strings.ToLower(strings.TrimSpace(s)))
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("dropping umbrella terms", zap.Strings("skills", dropped))
	}
	return out, stepOf(len(in), len(out)), nil
}

type categoryFilter struct {
	disabled  bool
	reason    string
	threshold float64
	floor     float64
}

// NewCategory creates the normalizer-backed step. A skill survives when it
// is in the known vocabulary, lands in a real category, or its best
// similarity reaches the floor.
func NewCategory() Filter {
	return &categoryFilter{}
}

func (f *categoryFilter) Name() string { return "category" }

func (f *categoryFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *categoryFilter) IsEnabled() bool { return !f.disabled }

func (f *categoryFilter) Validate(cfg *Config) error {
	if cfg.CategoryThreshold < 0 || cfg.CategoryThreshold > 1 {
		return fmt.Errorf("category threshold %.2f is outside [0,1]", cfg.CategoryThreshold)
	}
	if cfg.ScoreFloor < 0 || cfg.ScoreFloor > 1 {
		return fmt.Errorf("score floor %.2f is outside [0,1]", cfg.ScoreFloor)
	}
	f.threshold = cfg.CategoryThreshold
	f.floor = cfg.ScoreFloor
	return nil
}

// Apply leaves the list untouched when the normalizer is missing or
// degraded: a skill is only dropped on positive evidence.
func (f *categoryFilter) Apply(ctx context.Context, deps Deps, in []string) ([]string, Step, error) {
	if deps.Normalizer == nil || len(in) == 0 {
		return in, stepOf(len(in), len(in)), nil
	}

	normalized, err := deps.Normalizer.Normalize(ctx, in, f.threshold)
	if err != nil {
		if deps.Logger != nil && !errors.Is(err, normalizer.ErrDisabled) {
			deps.Logger.Warn("category filter skipped", zap.Error(err))
		}
		return in, stepOf(len(in), len(in)), nil
	}

	byName := make(map[string]normalizer.NormalizedSkill, len(normalized))
	for _, n := range normalized {
		byName[n.Original] = n
	}

	out, _ := keep(in, func(s string) bool {
		if skills.IsKnown(strings.ToLower(strings.TrimSpace(s))) {
			return true
		}
		n, ok := byName[s]
		if !ok {
			return true
		}
		return n.Category != normalizer.Other || n.Score >= f.floor
	})
	return out, stepOf(len(in), len(out)), nil
}

func (f *categoryFilter) Status() Status {
	details := map[string]string{
		"threshold":   strconv.FormatFloat(f.threshold, 'f', 2, 64),
		"score_floor": strconv.FormatFloat(f.floor, 'f', 2, 64),
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
