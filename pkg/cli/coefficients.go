package cli

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/mchmarny/houseval/pkg/score"
	"github.com/samber/lo"
	urfave "github.com/urfave/cli/v3"
)

const (
	sortFlagName = "sort"

	sortDeclared = "declared"
	sortName     = "name"
	sortWeight   = "weight"
)

var sortOrders = []string{sortDeclared, sortName, sortWeight}

type rankedCoefficient struct {
	Rank    int     `json:"rank" yaml:"rank"`
	Feature string  `json:"feature" yaml:"feature"`
	Weight  float64 `json:"weight" yaml:"weight"`
	Effect  string  `json:"effect" yaml:"effect"`
}

type coefficientList struct {
	Model        string               `json:"model" yaml:"model"`
	Baseline     string               `json:"baseline" yaml:"baseline"`
	Intercept    float64              `json:"intercept" yaml:"intercept"`
	Coefficients []*rankedCoefficient `json:"coefficients" yaml:"coefficients"`
}

func coefficientCommand() *urfave.Command {
	return &urfave.Command{
		Name:    "coef",
		Aliases: []string{"c"},
		Usage:   "Coefficient table operations",
		Commands: []*urfave.Command{
			{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "List model coefficients (feature importance)",
				Action:  cmdListCoefficients,
				Flags: []urfave.Flag{
					&urfave.StringFlag{
						Name:  sortFlagName,
						Usage: fmt.Sprintf("Sort order [%s]", strings.Join(sortOrders, ", ")),
						Value: sortDeclared,
					},
				},
			},
			{
				Name:    "export",
				Aliases: []string{"e"},
				Usage:   "Print the loaded coefficient table as a coefficient document",
				Action:  cmdExportCoefficients,
			},
		},
	}
}

func listCoefficients(t *score.Table, baseline, order string) (*coefficientList, error) {
	list := t.Document().Coefficients

	switch order {
	case "", sortDeclared:
	case sortName:
		slices.SortStableFunc(list, func(a, b score.Coefficient) int {
			return strings.Compare(a.Feature, b.Feature)
		})
	case sortWeight:
		slices.SortStableFunc(list, func(a, b score.Coefficient) int {
			return cmp.Compare(math.Abs(b.Weight), math.Abs(a.Weight))
		})
	default:
		return nil, fmt.Errorf("unsupported sort order: %q (expected one of: %s)",
			order, strings.Join(sortOrders, ", "))
	}

	return &coefficientList{
		Model:     t.Name(),
		Baseline:  baseline,
		Intercept: t.Intercept(),
		Coefficients: lo.Map(list, func(c score.Coefficient, i int) *rankedCoefficient {
			return &rankedCoefficient{
				Rank:    i + 1,
				Feature: c.Feature,
				Weight:  c.Weight,
				Effect:  effect(c.Weight),
			}
		}),
	}, nil
}

func effect(w float64) string {
	switch {
	case w > 0:
		return "raises price"
	case w < 0:
		return "lowers price"
	default:
		return "none"
	}
}

func cmdListCoefficients(_ context.Context, cmd *urfave.Command) error {
	app := getConfig(cmd)

	list, err := listCoefficients(app.Encoder.Table(), app.Encoder.Baseline(), cmd.String(sortFlagName))
	if err != nil {
		return err
	}
	return app.print(cmd, list)
}

func cmdExportCoefficients(_ context.Context, cmd *urfave.Command) error {
	app := getConfig(cmd)
	return app.print(cmd, app.Encoder.Table().Document())
}
