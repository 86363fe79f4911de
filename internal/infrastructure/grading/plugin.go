package grading

import (
	"fmt"
	"log/slog"
	"plugin"
	"sync"
)

// ComputeFinalFunc is the signature the plugin must export under the
// symbol "ComputeFinal", either as the function itself or a pointer to it.
type ComputeFinalFunc = func(np1, np2, activityAvg float64) float64

// PluginCalculator delegates to a function loaded from a shared object.
// A panic inside the plugin is recovered and the built-in weighted formula
// answers instead, with a one-time warning.
type PluginCalculator struct {
	fn       ComputeFinalFunc
	fallback WeightedCalculator
	logger   *slog.Logger
	warnOnce sync.Once
}

// LoadPlugin opens the shared object at path and resolves its ComputeFinal
// symbol. Any failure is returned so the caller can fall back to the
// built-in calculator.
func LoadPlugin(path string, logger *slog.Logger) (*PluginCalculator, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grading plugin %q: %w", path, err)
	}
	sym, err := p.Lookup("ComputeFinal")
	if err != nil {
		return nil, fmt.Errorf("lookup ComputeFinal in %q: %w", path, err)
	}
	var fn ComputeFinalFunc
	switch v := sym.(type) {
	case ComputeFinalFunc:
		fn = v
	case *ComputeFinalFunc:
		fn = *v
	default:
		return nil, fmt.Errorf("plugin %q: ComputeFinal has type %T, want func(float64, float64, float64) float64", path, sym)
	}
	return &PluginCalculator{fn: fn, logger: logger}, nil
}

// ComputeFinal calls the plugin function, recovering from panics.
func (c *PluginCalculator) ComputeFinal(np1, np2, activityAvg float64) (result float64) {
	defer func() {
		if r := recover(); r != nil {
			c.warnOnce.Do(func() {
				c.logger.Warn("grading plugin panicked, using built-in formula",
					slog.Any("panic", r))
			})
			result = c.fallback.ComputeFinal(np1, np2, activityAvg)
		}
	}()
	return c.fn(np1, np2, activityAvg)
}

// Select returns the plugin calculator at path when it loads, otherwise
// the built-in weighted calculator. Load failures are logged once here.
func Select(path string, logger *slog.Logger) Calculator {
	if path == "" {
		return WeightedCalculator{}
	}
	calc, err := LoadPlugin(path, logger)
	if err != nil {
		logger.Warn("grading plugin unavailable, using built-in formula",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return WeightedCalculator{}
	}
	logger.Info("grading plugin loaded", slog.String("path", path))
	return calc
}
