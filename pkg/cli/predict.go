package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mchmarny/houseval/pkg/housing"
	urfave "github.com/urfave/cli/v3"
)

const (
	proximityFlagName = "ocean-proximity"
	explainFlagName   = "explain"
	noSaveFlagName    = "no-save"
)

func explainFlag() urfave.Flag {
	return &urfave.BoolFlag{
		Name:  explainFlagName,
		Usage: "Include the weighted term of every feature",
	}
}

func noSaveFlag() urfave.Flag {
	return &urfave.BoolFlag{
		Name:  noSaveFlagName,
		Usage: "Do not record the estimate in the prediction history",
	}
}

func predictCommand() *urfave.Command {
	def := housing.DefaultInput()
	return &urfave.Command{
		Name:    "predict",
		Aliases: []string{"p"},
		Usage:   "Estimate the median house value of a block",
		UsageText: `houseval predict                                            # sample block
   houseval predict --median-income 3.5 --ocean-proximity INLAND --explain
   houseval --baseline INLAND predict --no-save`,
		Action: cmdPredict,
		Flags: []urfave.Flag{
			&urfave.FloatFlag{Name: housing.FeatureLongitude, Usage: "Block longitude", Value: def.Longitude},
			&urfave.FloatFlag{Name: housing.FeatureLatitude, Usage: "Block latitude", Value: def.Latitude},
			&urfave.FloatFlag{Name: flagName(housing.FeatureHousingMedianAge), Usage: "Median age of a house within the block", Value: def.HousingMedianAge},
			&urfave.FloatFlag{Name: flagName(housing.FeatureTotalRooms), Usage: "Total number of rooms within the block", Value: def.TotalRooms},
			&urfave.FloatFlag{Name: flagName(housing.FeatureTotalBedrooms), Usage: "Total number of bedrooms within the block", Value: def.TotalBedrooms},
			&urfave.FloatFlag{Name: housing.FeaturePopulation, Usage: "Total number of people residing within the block", Value: def.Population},
			&urfave.FloatFlag{Name: housing.FeatureHouseholds, Usage: "Total number of households within the block", Value: def.Households},
			&urfave.FloatFlag{Name: flagName(housing.FeatureMedianIncome), Usage: "Median household income (tens of thousands of USD)", Value: def.MedianIncome},
			&urfave.StringFlag{
				Name:  proximityFlagName,
				Usage: fmt.Sprintf("Location w.r.t. the ocean [%s]", strings.Join(housing.ProximityValues, ", ")),
				Value: def.OceanProximity,
			},
			explainFlag(),
			noSaveFlag(),
		},
	}
}

func flagName(feature string) string {
	return strings.ReplaceAll(feature, "_", "-")
}

func inputFromFlags(cmd *urfave.Command) housing.Input {
	return housing.Input{
		Longitude:        cmd.Float(housing.FeatureLongitude),
		Latitude:         cmd.Float(housing.FeatureLatitude),
		HousingMedianAge: cmd.Float(flagName(housing.FeatureHousingMedianAge)),
		TotalRooms:       cmd.Float(flagName(housing.FeatureTotalRooms)),
		TotalBedrooms:    cmd.Float(flagName(housing.FeatureTotalBedrooms)),
		Population:       cmd.Float(housing.FeaturePopulation),
		Households:       cmd.Float(housing.FeatureHouseholds),
		MedianIncome:     cmd.Float(flagName(housing.FeatureMedianIncome)),
		OceanProximity:   cmd.String(proximityFlagName),
	}
}

func cmdPredict(ctx context.Context, cmd *urfave.Command) error {
	app := getConfig(cmd)
	in := inputFromFlags(cmd)

	res, err := app.estimate(in, cmd.Bool(explainFlagName))
	if err != nil {
		return fmt.Errorf("estimating price: %w", err)
	}
	slog.Debug("estimated price", "price", res.Price, "model", res.Prediction.Model)

	if !cmd.Bool(noSaveFlagName) {
		if err := app.save(ctx, res); err != nil {
			return err
		}
	}

	return app.print(cmd, res)
}
