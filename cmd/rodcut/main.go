// RodCut - exhaustive rod cutting optimizer
//
// Assigns every required piece to a stock rod so that the sum of squared
// rod remainders is maximal, which keeps leftovers few and long.
//
// Usage:
//
//	rodcut -rods 311.5,364.5 -pieces 227,90.5
//	rodcut -sort desc -pdf plan.pdf job.csv
//
// Build:
//
//	go build -o rodcut ./cmd/rodcut
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/piwi3910/RodCut/internal/engine"
	"github.com/piwi3910/RodCut/internal/export"
	"github.com/piwi3910/RodCut/internal/importer"
	"github.com/piwi3910/RodCut/internal/logging"
	"github.com/piwi3910/RodCut/internal/metrics"
	"github.com/piwi3910/RodCut/internal/model"
	"github.com/piwi3910/RodCut/internal/project"
	"github.com/prometheus/client_golang/prometheus"
)

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitNoSolution = 2
	exitTooLarge   = 3
	exitHalted     = 4
)

type options struct {
	rods          string
	pieces        string
	presets       string
	jsonOut       bool
	sortOrder     string
	kerf          float64
	maxComb       uint64
	timeout       time.Duration
	compare       bool
	pdfPath       string
	labelsPath    string
	xlsxPath      string
	dxfPath       string
	savePath      string
	checkpoint    string
	metricsPath   string
	configPath    string
	inventoryPath string
	keepOffcuts   bool
	estimate      float64
	verbose       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (options, []string, error) {
	var o options
	fs := flag.NewFlagSet("rodcut", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.rods, "rods", "", "comma separated rod lengths in mm")
	fs.StringVar(&o.pieces, "pieces", "", "comma separated piece lengths in mm")
	fs.StringVar(&o.presets, "stock", "", "inventory presets to use as rods, as name:qty,name:qty")
	fs.BoolVar(&o.jsonOut, "json", false, "print the result as JSON")
	fs.StringVar(&o.sortOrder, "sort", "", "order rods and pieces before the search: none, asc or desc")
	fs.Float64Var(&o.kerf, "kerf", 0, "add this blade width to every piece")
	fs.Uint64Var(&o.maxComb, "max-combinations", 0, "refuse searches larger than this (default from config)")
	fs.DurationVar(&o.timeout, "timeout", 0, "stop the search after this long (0 = no limit)")
	fs.BoolVar(&o.compare, "compare", false, "compare sort orders and kerf settings")
	fs.StringVar(&o.pdfPath, "pdf", "", "write a PDF cut plan")
	fs.StringVar(&o.labelsPath, "labels", "", "write a PDF sheet of QR piece labels")
	fs.StringVar(&o.xlsxPath, "xlsx", "", "write an Excel cut list")
	fs.StringVar(&o.dxfPath, "dxf", "", "write a DXF drawing of the plan")
	fs.StringVar(&o.savePath, "save", "", "save the project with its result")
	fs.StringVar(&o.checkpoint, "checkpoint", "", "resume from and save interrupted searches to this file")
	fs.StringVar(&o.metricsPath, "metrics", "", "write Prometheus metrics in textfile format")
	fs.StringVar(&o.configPath, "config", project.DefaultConfigPath(), "application config file")
	fs.StringVar(&o.inventoryPath, "inventory", project.DefaultInventoryPath(), "stock inventory file")
	fs.BoolVar(&o.keepOffcuts, "keep-offcuts", false, "add usable offcuts to the inventory")
	fs.Float64Var(&o.estimate, "estimate", 0, "print how many rods of this length to buy")
	fs.BoolVar(&o.verbose, "verbose", false, "log search progress")
	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	return o, fs.Args(), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, files, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitError
	}

	cfg, err := project.LoadAppConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Cannot load config %s: %v\n", opts.configPath, err)
		return exitError
	}

	var logger logging.Logger = logging.NewText(stderr, opts.verbose)
	if cfg.LogFormat == "json" {
		logger = logging.NewJSON(stderr, opts.verbose)
	}

	settings := model.DefaultSettings()
	cfg.ApplyToSettings(&settings)

	rods, pieces, jobOrder, err := loadInput(opts, files, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	if jobOrder != model.SortNone {
		settings.SortOrder = jobOrder
	}
	if opts.sortOrder != "" {
		order, ok := model.ParseSortOrder(opts.sortOrder)
		if !ok {
			fmt.Fprintf(stderr, "Unknown sort order %q\n", opts.sortOrder)
			return exitError
		}
		settings.SortOrder = order
	}
	if opts.kerf > 0 {
		settings.Kerf = opts.kerf
		settings.ApplyKerf = true
	}
	if opts.maxComb > 0 {
		settings.MaxCombinations = opts.maxComb
	}

	if opts.estimate > 0 {
		printEstimate(stdout, model.CalculatePurchaseEstimate(pieces, opts.estimate, settings.Kerf, 10, 0))
	}

	var reg *prometheus.Registry
	var collector metrics.Collector = metrics.NewNop()
	if opts.metricsPath != "" {
		reg = prometheus.NewRegistry()
		collector = metrics.NewPrometheus(reg, "rodcut")
	}
	engineOpts := []engine.Option{engine.WithLogger(logger), engine.WithMetrics(collector)}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	if opts.compare {
		results := engine.CompareScenarios(ctx, engine.BuildDefaultScenarios(settings), rods, pieces, engineOpts...)
		printComparison(stdout, results)
		return writeMetrics(opts.metricsPath, reg, stderr, exitOK)
	}

	var resume *engine.Checkpoint
	if opts.checkpoint != "" {
		resume, err = project.LoadCheckpoint(opts.checkpoint)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		if resume != nil {
			logger.Info("resuming search", "checkpoint", opts.checkpoint, "evaluated", resume.Evaluated)
		}
	}

	result, cp, err := engine.New(settings, engineOpts...).Run(ctx, rods, pieces, resume)
	if err != nil {
		if cp != nil && opts.checkpoint != "" {
			if saveErr := project.SaveCheckpoint(opts.checkpoint, *cp); saveErr != nil {
				fmt.Fprintln(stderr, saveErr)
			} else {
				fmt.Fprintf(stderr, "Search state saved to %s\n", opts.checkpoint)
			}
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	if opts.checkpoint != "" {
		if err := os.Remove(opts.checkpoint); err != nil && !os.IsNotExist(err) {
			fmt.Fprintln(stderr, err)
		}
	}

	if opts.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
	} else {
		printResult(stdout, result, settings)
	}

	if !result.Found() {
		if !opts.jsonOut {
			fmt.Fprintln(stdout, "No valid cutting pattern exists.")
		}
		return writeMetrics(opts.metricsPath, reg, stderr, exitCode(engine.ErrNoFeasibleSolution))
	}

	if err := writeOutputs(opts, result, settings); err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	if opts.savePath != "" {
		p := model.NewProject()
		p.Name = strings.TrimSuffix(filepath.Base(opts.savePath), filepath.Ext(opts.savePath))
		p.Rods = rods
		p.Pieces = pieces
		p.Settings = settings
		p.Result = &result
		if err := project.SaveProject(opts.savePath, p); err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		cfg.AddRecentProject(opts.savePath)
		if err := project.SaveAppConfig(opts.configPath, cfg); err != nil {
			logger.Warn("cannot update recent projects", "error", err)
		}
	}

	offcuts := model.DetectOffcuts(result, settings.MinOffcutLength)
	if opts.keepOffcuts && len(offcuts) > 0 {
		inv, err := project.LoadInventory(opts.inventoryPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		inv.AddOffcuts(offcuts, "")
		if err := project.SaveInventory(opts.inventoryPath, inv); err != nil {
			fmt.Fprintln(stderr, err)
			return exitError
		}
		fmt.Fprintf(stdout, "Added %d offcut(s) to %s\n", len(offcuts), opts.inventoryPath)
	}

	return writeMetrics(opts.metricsPath, reg, stderr, exitOK)
}

// loadInput gathers rods and pieces from files, length flags and inventory presets.
func loadInput(opts options, files []string, stderr io.Writer) ([]model.Rod, []model.Piece, model.SortOrder, error) {
	var rods []model.Rod
	var pieces []model.Piece
	order := model.SortNone

	for _, path := range files {
		if strings.EqualFold(filepath.Ext(path), ".json") {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, nil, order, err
			}
			job, err := importer.ParseJSONJob(data)
			if err != nil {
				return nil, nil, order, fmt.Errorf("%s: %w", path, err)
			}
			rods = append(rods, job.Rods...)
			pieces = append(pieces, job.Pieces...)
			if job.SortOrder != model.SortNone {
				order = job.SortOrder
			}
			continue
		}

		res := importer.ImportFile(path)
		for _, w := range res.Warnings {
			fmt.Fprintf(stderr, "%s: %s\n", path, w)
		}
		for _, e := range res.Errors {
			fmt.Fprintf(stderr, "%s: %s\n", path, e)
		}
		if res.Empty() && len(res.Errors) > 0 {
			return nil, nil, order, fmt.Errorf("%s: nothing imported", path)
		}
		rods = append(rods, res.Rods...)
		pieces = append(pieces, res.Pieces...)
	}

	lengths, err := parseLengths(opts.rods)
	if err != nil {
		return nil, nil, order, fmt.Errorf("-rods: %w", err)
	}
	for i, l := range lengths {
		rods = append(rods, model.NewRod(fmt.Sprintf("Rod %d", i+1), l, 1))
	}

	lengths, err = parseLengths(opts.pieces)
	if err != nil {
		return nil, nil, order, fmt.Errorf("-pieces: %w", err)
	}
	for i, l := range lengths {
		pieces = append(pieces, model.NewPiece(fmt.Sprintf("Piece %d", i+1), l, 1))
	}

	if opts.presets != "" {
		inv, err := project.LoadInventory(opts.inventoryPath)
		if err != nil {
			return nil, nil, order, err
		}
		presetRods, err := presetsToRods(inv, opts.presets)
		if err != nil {
			return nil, nil, order, fmt.Errorf("-stock: %w", err)
		}
		rods = append(rods, presetRods...)
	}

	if len(rods) == 0 {
		return nil, nil, order, errors.New("no rods given: use -rods, -stock or an input file")
	}
	return rods, pieces, order, nil
}

// parseLengths parses a comma separated list of lengths.
func parseLengths(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	lengths := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid length %q", p)
		}
		lengths = append(lengths, v)
	}
	return lengths, nil
}

// presetsToRods resolves name:qty pairs against the inventory. The quantity
// defaults to one.
func presetsToRods(inv model.Inventory, list string) ([]model.Rod, error) {
	var rods []model.Rod
	for _, item := range strings.Split(list, ",") {
		name, qtyStr, hasQty := strings.Cut(strings.TrimSpace(item), ":")
		qty := 1
		if hasQty {
			n, err := strconv.Atoi(qtyStr)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid quantity in %q", item)
			}
			qty = n
		}
		preset := inv.FindRodByName(name)
		if preset == nil {
			preset = inv.FindRodByID(name)
		}
		if preset == nil {
			return nil, fmt.Errorf("unknown preset %q (have: %s)", name, strings.Join(inv.RodNames(), ", "))
		}
		rods = append(rods, preset.ToRod(qty))
	}
	return rods, nil
}

func writeOutputs(opts options, result model.OptimizeResult, settings model.Settings) error {
	outputs := []struct {
		path  string
		write func(string, model.OptimizeResult, model.Settings) error
	}{
		{opts.pdfPath, export.ExportPDF},
		{opts.labelsPath, export.ExportLabels},
		{opts.xlsxPath, export.ExportXLSX},
		{opts.dxfPath, export.ExportDXF},
	}
	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		if err := o.write(o.path, result, settings); err != nil {
			return fmt.Errorf("write %s: %w", o.path, err)
		}
	}
	return nil
}

func writeMetrics(path string, reg *prometheus.Registry, stderr io.Writer, code int) int {
	if path == "" || reg == nil {
		return code
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		fmt.Fprintf(stderr, "Cannot write metrics: %v\n", err)
		if code == exitOK {
			return exitError
		}
	}
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, engine.ErrNoFeasibleSolution):
		return exitNoSolution
	case errors.Is(err, engine.ErrSearchTooLarge):
		return exitTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return exitHalted
	default:
		return exitError
	}
}
