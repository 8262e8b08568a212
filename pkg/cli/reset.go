package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/houseval/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

func resetCommand() *urfave.Command {
	return &urfave.Command{
		Name:            "reset",
		Usage:           "Delete the prediction history database and start fresh",
		HideHelpCommand: true,
		Flags:           []urfave.Flag{yesFlag()},
		Action:          cmdReset,
	}
}

// historyName hides postgres credentials in prompts and logs.
func (a *appConfig) historyName() string {
	if a.Driver() == data.DriverSQLite {
		return a.Config.DB
	}
	return "the postgres history database"
}

// confirm asks the user to type y unless --yes was given.
func confirm(cmd *urfave.Command, msg string) (bool, error) {
	if cmd.Bool(yesFlagName) {
		return true, nil
	}

	w := cmd.Root().Writer
	fmt.Fprintln(w, msg)
	fmt.Fprint(w, "Are you sure? [y/N]: ")

	answer, err := bufio.NewReader(cmd.Root().Reader).ReadString('\n')
	if err != nil && answer == "" {
		return false, fmt.Errorf("reading input: %w", err)
	}

	if strings.ToLower(strings.TrimSpace(answer)) != "y" {
		fmt.Fprintln(w, "Aborted.")
		return false, nil
	}
	return true, nil
}

func cmdReset(ctx context.Context, cmd *urfave.Command) error {
	app := getConfig(cmd)

	ok, err := confirm(cmd, fmt.Sprintf("This will permanently delete all data in %s", app.historyName()))
	if err != nil || !ok {
		return err
	}

	if app.Driver() != data.DriverSQLite {
		store, err := app.Store()
		if err != nil {
			return err
		}
		n, err := store.DeletePredictions(ctx)
		if err != nil {
			return err
		}
		slog.Info("predictions deleted", "count", n)
		fmt.Fprintln(cmd.Root().Writer, "Reset complete.")
		return nil
	}

	// close the DB before deleting the file
	app.close()

	if err := os.Remove(app.Config.DB); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting database: %w", err)
	}
	slog.Info("database deleted", "path", app.Config.DB)

	if err := data.Init(app.Config.DB); err != nil {
		return fmt.Errorf("re-initializing database: %w", err)
	}

	slog.Info("database re-initialized", "path", app.Config.DB)
	fmt.Fprintln(cmd.Root().Writer, "Reset complete.")
	return nil
}
