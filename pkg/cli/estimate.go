package cli

import (
	"context"
	"fmt"

	"github.com/mchmarny/houseval/pkg/data"
	"github.com/mchmarny/houseval/pkg/housing"
	"github.com/mchmarny/houseval/pkg/score"
)

type predictResult struct {
	Prediction    *data.Prediction     `json:"prediction" yaml:"prediction"`
	Price         string               `json:"price" yaml:"price"`
	Contributions []score.Contribution `json:"contributions,omitempty" yaml:"contributions,omitempty"`
}

func newPredictResult(p *data.Prediction) *predictResult {
	return &predictResult{
		Prediction: p,
		Price:      housing.FormatPrice(p.Value),
	}
}

// estimate scores a single input with the loaded model. It has no side
// effects and is safe to call from multiple goroutines.
func (a *appConfig) estimate(in housing.Input, explain bool) (*predictResult, error) {
	v, err := a.Encoder.Estimate(in)
	if err != nil {
		return nil, err
	}

	t := a.Encoder.Table()
	res := newPredictResult(data.NewPrediction(t.Name(), a.Encoder.Baseline(), in, v))

	if explain {
		res.Contributions, err = a.Encoder.Explain(in)
		if err != nil {
			return nil, fmt.Errorf("explaining estimate: %w", err)
		}
	}
	return res, nil
}

func (a *appConfig) save(ctx context.Context, list ...*predictResult) error {
	if len(list) == 0 {
		return nil
	}

	store, err := a.Store()
	if err != nil {
		return err
	}

	items := make([]*data.Prediction, len(list))
	for i, r := range list {
		items[i] = r.Prediction
	}
	if err := store.SavePredictions(ctx, items); err != nil {
		return fmt.Errorf("saving predictions: %w", err)
	}
	return nil
}
