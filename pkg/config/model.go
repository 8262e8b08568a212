package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/houseval/pkg/housing"
	"github.com/mchmarny/houseval/pkg/net"
	"github.com/mchmarny/houseval/pkg/score"
)

// LoadTable loads a coefficient table from a file path or URL. An empty
// source returns the embedded model.
func LoadTable(ctx context.Context, source string) (*score.Table, error) {
	if source == "" {
		return housing.DefaultTable()
	}

	var (
		b   []byte
		err error
	)
	if net.IsURL(source) {
		b, err = net.Fetch(ctx, source)
	} else {
		b, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, &score.ConfigurationError{Reason: "reading coefficients from " + source, Err: err}
	}

	t, err := score.ParseTable(modelName(source), b)
	if err != nil {
		return nil, fmt.Errorf("loading coefficients from %s: %w", source, err)
	}
	return t, nil
}

// NewEncoder loads the configured coefficient table and validates it
// against the configured baseline. A table that still carries the baseline
// indicator has it removed.
func NewEncoder(ctx context.Context, c *Config) (*housing.Encoder, error) {
	t, err := LoadTable(ctx, c.Coefficients)
	if err != nil {
		return nil, err
	}

	t, dropped, err := housing.TrimBaseline(t, c.Baseline)
	if err != nil {
		return nil, err
	}
	if dropped != nil {
		if c.Baseline != housing.DefaultBaseline && dropped.Weight != 0 {
			slog.Warn("non-default baseline drops a fitted coefficient, estimates for it change",
				"baseline", c.Baseline, "feature", dropped.Feature, "weight", dropped.Weight)
		} else {
			slog.Debug("baseline indicator removed from coefficient table",
				"model", t.Name(), "baseline", c.Baseline)
		}
	}

	enc, err := housing.NewEncoder(t, c.Baseline)
	if err != nil {
		return nil, fmt.Errorf("validating coefficients: %w", err)
	}

	slog.Debug("model loaded", "model", t.Name(), "features", t.Len(), "baseline", c.Baseline)
	return enc, nil
}

func modelName(source string) string {
	if net.IsURL(source) {
		return source
	}
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
