package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mchmarny/houseval/pkg/data"
	"github.com/samber/lo"
	urfave "github.com/urfave/cli/v3"
)

const (
	limitFlagName = "limit"
	idFlagName    = "id"
	yesFlagName   = "yes"
)

func yesFlag() urfave.Flag {
	return &urfave.BoolFlag{
		Name:    yesFlagName,
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation prompt",
	}
}

func historyCommand() *urfave.Command {
	return &urfave.Command{
		Name:    "history",
		Aliases: []string{"h"},
		Usage:   "Prediction history operations",
		Commands: []*urfave.Command{
			{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "List recent predictions, newest first",
				Action:  cmdListHistory,
				Flags: []urfave.Flag{
					&urfave.IntFlag{
						Name:  limitFlagName,
						Usage: "Limits number of result returned",
						Value: data.PredictionListLimitDefault,
					},
				},
			},
			{
				Name:    "show",
				Aliases: []string{"s"},
				Usage:   "Show a single prediction",
				Action:  cmdShowHistory,
				Flags: []urfave.Flag{
					&urfave.StringFlag{
						Name:     idFlagName,
						Usage:    "Prediction ID",
						Required: true,
					},
				},
			},
			{
				Name:   "state",
				Usage:  "Show history record counts",
				Action: cmdHistoryState,
			},
			{
				Name:   "clear",
				Usage:  "Delete all recorded predictions",
				Action: cmdClearHistory,
				Flags:  []urfave.Flag{yesFlag()},
			},
		},
	}
}

func cmdListHistory(ctx context.Context, cmd *urfave.Command) error {
	app := getConfig(cmd)
	store, err := app.Store()
	if err != nil {
		return err
	}

	list, err := store.ListPredictions(ctx, cmd.Int(limitFlagName))
	if err != nil {
		return fmt.Errorf("listing predictions: %w", err)
	}

	return app.print(cmd, lo.Map(list, func(p *data.Prediction, _ int) *predictResult {
		return newPredictResult(p)
	}))
}

func cmdShowHistory(ctx context.Context, cmd *urfave.Command) error {
	app := getConfig(cmd)
	store, err := app.Store()
	if err != nil {
		return err
	}

	p, err := store.GetPrediction(ctx, cmd.String(idFlagName))
	if err != nil {
		return err
	}
	return app.print(cmd, newPredictResult(p))
}

func cmdHistoryState(ctx context.Context, cmd *urfave.Command) error {
	app := getConfig(cmd)
	store, err := app.Store()
	if err != nil {
		return err
	}

	state, err := store.GetDataState(ctx)
	if err != nil {
		return fmt.Errorf("reading history state: %w", err)
	}
	return app.print(cmd, state)
}

func cmdClearHistory(ctx context.Context, cmd *urfave.Command) error {
	app := getConfig(cmd)

	ok, err := confirm(cmd, fmt.Sprintf("This will permanently delete all predictions in %s", app.historyName()))
	if err != nil || !ok {
		return err
	}

	store, err := app.Store()
	if err != nil {
		return err
	}

	n, err := store.DeletePredictions(ctx)
	if err != nil {
		return err
	}
	slog.Info("predictions deleted", "count", n)
	return nil
}
