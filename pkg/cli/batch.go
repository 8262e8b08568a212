package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mchmarny/houseval/pkg/housing"
	urfave "github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const (
	fileFlagName    = "file"
	workersFlagName = "workers"
)

func batchCommand() *urfave.Command {
	return &urfave.Command{
		Name:    "batch",
		Aliases: []string{"b"},
		Usage:   "Estimate every block in a YAML or JSON list of inputs",
		UsageText: `houseval batch --file blocks.yaml
   cat blocks.json | houseval batch --file -`,
		Action: cmdBatch,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:     fileFlagName,
				Aliases:  []string{"f"},
				Usage:    "Path to the input list (- for stdin)",
				Required: true,
			},
			&urfave.IntFlag{
				Name:  workersFlagName,
				Usage: "Number of concurrent scoring workers (default: config batch_workers)",
			},
			explainFlag(),
			noSaveFlag(),
		},
	}
}

func cmdBatch(ctx context.Context, cmd *urfave.Command) error {
	app := getConfig(cmd)

	b, err := readInput(cmd, cmd.String(fileFlagName))
	if err != nil {
		return err
	}

	inputs, err := housing.DecodeInputs(b)
	if err != nil {
		return fmt.Errorf("decoding inputs: %w", err)
	}

	workers := app.Config.BatchWorkers
	if cmd.IsSet(workersFlagName) {
		workers = cmd.Int(workersFlagName)
	}

	results, err := app.estimateAll(ctx, inputs, workers, cmd.Bool(explainFlagName))
	if err != nil {
		return err
	}
	slog.Debug("batch scored", "inputs", len(inputs), "workers", workers)

	if !cmd.Bool(noSaveFlagName) {
		if err := app.save(ctx, results...); err != nil {
			return err
		}
	}

	return app.print(cmd, results)
}

// estimateAll scores inputs concurrently and returns results in input
// order. The first failure cancels the remaining work.
func (a *appConfig) estimateAll(ctx context.Context, inputs []housing.Input, workers int, explain bool) ([]*predictResult, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]*predictResult, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.estimate(in, explain)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("estimating batch: %w", err)
	}
	return results, nil
}

func readInput(cmd *urfave.Command, path string) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.Root().Reader)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return b, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return b, nil
}
