package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"signaltracker/cmd/schedule"
	"signaltracker/src/bootstrap"
	"signaltracker/src/model"
	"signaltracker/src/tracker"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "signaltracker"
	app.Usage = "paper-trade signals from entry to exit"
	app.Version = Version

	app.Commands = []cli.Command{
		evaluateCMD,
		scheduleCMD,
		createCMD,
		scanCMD,
		closeCMD,
		statsCMD,
		clearCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	assetFlag = cli.StringFlag{
		Name:  "asset",
		Value: string(model.AssetStock),
		Usage: "asset class: stock or crypto",
	}

	evaluateCMD = cli.Command{
		Name:        "evaluate",
		Usage:       "run one evaluation pass",
		Action:      evaluateAction,
		Description: `Re-price every active signal once and close those whose rules fire`,
	}
	scheduleCMD = cli.Command{
		Name:        "schedule",
		Usage:       "run evaluation passes on EVALUATE_SCHEDULE",
		Action:      scheduleAction,
		Description: `Run the evaluation scheduler until interrupted`,
	}
	createCMD = cli.Command{
		Name:      "create",
		Usage:     "open a turbo signal",
		ArgsUsage: "<symbol>",
		Action:    createAction,
		Flags:     []cli.Flag{assetFlag},
	}
	scanCMD = cli.Command{
		Name:      "scan",
		Usage:     "open signals for the qualifying rows of a scan result file",
		ArgsUsage: "<scan.json>",
		Action:    scanAction,
		Flags:     []cli.Flag{assetFlag},
	}
	closeCMD = cli.Command{
		Name:      "close",
		Usage:     "close an active signal by hand",
		ArgsUsage: "<id>",
		Action:    closeAction,
		Flags: []cli.Flag{
			cli.StringFlag{Name: "reason", Usage: "close reason"},
		},
	}
	statsCMD = cli.Command{
		Name:   "stats",
		Usage:  "print performance statistics of the closed set",
		Action: statsAction,
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "regimes", Usage: "group by entry regime"},
		},
	}
	clearCMD = cli.Command{
		Name:   "clear",
		Usage:  "delete every signal and report",
		Action: clearAction,
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "yes", Usage: "confirm the irreversible reset"},
		},
	}
)

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func engine(cmd string) (*tracker.Engine, error) {
	e, err := bootstrap.NewEngine()
	if err != nil {
		logrus.WithError(err).WithField("cmd", cmd).Error("Starting cmd")
		return nil, err
	}
	return e, nil
}

func evaluateAction(_ *cli.Context) error {
	logrus.Info("Starting evaluate CMD")
	e, err := engine("evaluate")
	if err != nil {
		return err
	}
	res, err := e.EvaluateAll(context.Background())
	if err != nil {
		return err
	}
	return printJSON(res)
}

func scheduleAction(_ *cli.Context) error {
	logrus.Info("Starting schedule CMD")
	s := &schedule.Schedule{Log: logrus.WithField("cmd", "schedule")}
	if err := s.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}
	return nil
}

func createAction(c *cli.Context) error {
	symbol := strings.TrimSpace(c.Args().First())
	if symbol == "" {
		return errors.New("symbol is required")
	}
	e, err := engine("create")
	if err != nil {
		return err
	}
	s, err := e.Create(context.Background(), symbol, model.AssetClass(c.String("asset")), nil)
	if err != nil {
		return err
	}
	return printJSON(s)
}

func scanAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("scan file is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var scan tracker.ScanResult
	if err := json.Unmarshal(raw, &scan); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	e, err := engine("scan")
	if err != nil {
		return err
	}
	created, warnings, err := e.RecordFromScan(context.Background(), scan, model.AssetClass(c.String("asset")))
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{"created": created, "warnings": warnings})
}

func closeAction(c *cli.Context) error {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return errors.New("signal id is required")
	}
	e, err := engine("close")
	if err != nil {
		return err
	}
	s, err := e.CloseSignal(context.Background(), id, c.String("reason"))
	if err != nil {
		return err
	}
	return printJSON(s)
}

func statsAction(c *cli.Context) error {
	e, err := engine("stats")
	if err != nil {
		return err
	}
	if c.Bool("regimes") {
		regimes, err := e.RegimePerformance(context.Background())
		if err != nil {
			return err
		}
		return printJSON(regimes)
	}
	summary, err := e.Stats(context.Background())
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func clearAction(c *cli.Context) error {
	if !c.Bool("yes") {
		return errors.New("refusing to clear without --yes")
	}
	e, err := engine("clear")
	if err != nil {
		return err
	}
	return e.ClearAll(context.Background())
}
