// Command survey-planner turns a mission request into a flyable survey
// path, writes it as JSON and optionally renders a PNG plan view, an HTML
// report and an entry in a SQLite plan archive.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/survey.planner/internal/config"
	"github.com/banshee-data/survey.planner/internal/monitoring"
	"github.com/banshee-data/survey.planner/internal/report"
	"github.com/banshee-data/survey.planner/internal/security"
	"github.com/banshee-data/survey.planner/internal/storage/sqlite"
	"github.com/banshee-data/survey.planner/internal/survey"
	"github.com/banshee-data/survey.planner/internal/survey/l1geom"
	"github.com/banshee-data/survey.planner/internal/survey/l4route"
	"github.com/banshee-data/survey.planner/internal/survey/l5simplify"
	"github.com/banshee-data/survey.planner/internal/units"
	"github.com/banshee-data/survey.planner/internal/version"
)

const program = "survey-planner"

// maxRequestSize caps request files.
const maxRequestSize = 4 * 1024 * 1024

// Options holds the parsed command line.
type Options struct {
	Request    string
	ConfigPath string
	Manual     bool
	OutDir     string
	Out        string
	Plot       string
	HTML       string
	DBPath     string
	Simplify   float64
	Chunk      int
	Preview    int
	Units      string
	List       int
	Show       string
	Version    bool
}

func parseFlags(args []string, stderr io.Writer) (*Options, error) {
	o := &Options{}
	fs := flag.NewFlagSet(program, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.Request, "request", "", "mission request JSON file")
	fs.StringVar(&o.ConfigPath, "config", "", "planner config JSON file (defaults apply when empty)")
	fs.BoolVar(&o.Manual, "manual", false, "treat -request as a manual lawnmower request")
	fs.StringVar(&o.OutDir, "outdir", ".", "directory all output files must stay under")
	fs.StringVar(&o.Out, "out", "", "segment JSON output file (default <name>.json)")
	fs.StringVar(&o.Plot, "plot", "", "PNG plan view output file")
	fs.StringVar(&o.HTML, "html", "", "HTML report output file")
	fs.StringVar(&o.DBPath, "db", "", "SQLite plan archive; plans are saved when set")
	fs.Float64Var(&o.Simplify, "simplify", -1, "Douglas-Peucker tolerance in metres (overrides config; <0 keeps config)")
	fs.IntVar(&o.Chunk, "chunk", 0, "also write the path in chunks of this many waypoints")
	fs.IntVar(&o.Preview, "preview", 0, "also write a preview keeping every Nth waypoint")
	fs.StringVar(&o.Units, "units", "", "display speed units: "+units.GetValidUnitsString())
	fs.IntVar(&o.List, "list", 0, "list the newest N archived plans from -db and exit")
	fs.StringVar(&o.Show, "show", "", "print an archived plan from -db by id and exit")
	fs.BoolVar(&o.Version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch {
	case o.Version:
	case o.List > 0 || o.Show != "":
		if o.DBPath == "" {
			return nil, errors.New("-list and -show need -db")
		}
	case o.Request == "":
		return nil, errors.New("-request is required")
	}
	if o.Chunk < 0 || o.Preview < 0 {
		return nil, errors.New("-chunk and -preview must be >= 0")
	}
	if o.Units != "" && !units.IsValid(o.Units) {
		return nil, fmt.Errorf("invalid -units %q, want one of %s", o.Units, units.GetValidUnitsString())
	}
	return o, nil
}

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("%s: %v", program, err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.Version {
		fmt.Fprintln(stdout, version.String(program))
		return nil
	}

	cfg := config.EmptyPlannerConfig()
	if o.ConfigPath != "" {
		if cfg, err = config.LoadPlannerConfig(o.ConfigPath); err != nil {
			return err
		}
	}
	monitoring.ConfigureLogger(cfg.GetLogLevel(), cfg.GetLogJSON())
	if o.Units == "" {
		o.Units = cfg.GetSpeedUnits()
	}

	ctx := context.Background()
	if o.List > 0 || o.Show != "" {
		return runArchive(ctx, o, stdout)
	}
	return runPlan(ctx, o, cfg, stdout)
}

// planned bundles what the outputs need from either request kind.
type planned struct {
	name   string
	target []l1geom.LocalCoord
	obs    []l4route.ObstacleFootprint
	result *survey.Result
}

func plan(o *Options, cfg *config.PlannerConfig) (*planned, error) {
	p := survey.NewPlanner(cfg)
	var tol *float64
	if o.Simplify >= 0 {
		tol = &o.Simplify
	}

	if o.Manual {
		var req survey.ManualRequest
		if err := readJSON(o.Request, &req); err != nil {
			return nil, err
		}
		if tol != nil {
			req.SimplifyTolerance = tol
		}
		res, err := p.PlanManual(req)
		if err != nil {
			return nil, err
		}
		return &planned{name: req.Name, obs: req.Obstacles, result: res}, nil
	}

	var req survey.Request
	if err := readJSON(o.Request, &req); err != nil {
		return nil, err
	}
	if tol != nil {
		req.SimplifyTolerance = tol
	}
	res, err := p.Plan(req)
	if err != nil {
		return nil, err
	}
	return &planned{name: req.Name, target: req.Target, obs: req.Obstacles, result: res}, nil
}

func runPlan(ctx context.Context, o *Options, cfg *config.PlannerConfig, stdout io.Writer) error {
	pl, err := plan(o, cfg)
	if err != nil {
		return err
	}
	res := pl.result
	for _, d := range res.Diagnostics.Warnings() {
		monitoring.Logf("warning: %s", d)
	}

	base := pl.name
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(o.Request), filepath.Ext(o.Request))
	}
	base = security.SanitizeFilename(base)

	ex := report.NewExporter(o.OutDir)
	outPath, err := ex.JSON(o.Out, base, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", outPath)

	if o.Chunk > 0 {
		chunks, err := l5simplify.Chunk(res.Segment, o.Chunk)
		if err != nil {
			return err
		}
		for i, c := range chunks {
			if _, err := ex.JSON("", fmt.Sprintf("%s_chunk_%02d", base, i), c); err != nil {
				return err
			}
		}
		fmt.Fprintf(stdout, "wrote %d chunk(s) of %d waypoints\n", len(chunks), o.Chunk)
	}

	if o.Preview > 0 {
		prev, err := l5simplify.Preview(res.Segment, o.Preview)
		if err != nil {
			return err
		}
		p, err := ex.JSON("", base+"_preview", prev)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s (%d waypoints)\n", p, len(prev.Waypoints))
	}

	in := report.Input{
		Title:      pl.name,
		Target:     l1geom.ProjectToWorldXY(pl.target),
		OBB:        res.OBB,
		Segment:    res.Segment,
		Obstacles:  pl.obs,
		Stats:      &res.Stats,
		SpeedUnits: o.Units,
	}
	if o.Plot != "" {
		p, err := ex.PlanView(o.Plot, base, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s\n", p)
	}
	if o.HTML != "" {
		p, err := ex.HTML(o.HTML, base, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s\n", p)
	}

	if o.DBPath != "" {
		store, err := sqlite.Open(o.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.SavePlan(ctx, &sqlite.PlanRecord{
			Name:        pl.name,
			Segment:     res.Segment,
			Stats:       res.Stats,
			Diagnostics: res.Diagnostics,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "archived plan %s\n", id)
	}

	fmt.Fprintln(stdout, report.Summary(in))
	return nil
}

func runArchive(ctx context.Context, o *Options, stdout io.Writer) error {
	store, err := sqlite.Open(o.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if o.Show != "" {
		rec, err := store.GetPlan(ctx, o.Show)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	plans, err := store.ListPlans(ctx, o.List)
	if err != nil {
		return err
	}
	du := units.DistanceUnitFor(o.Units)
	for _, p := range plans {
		fmt.Fprintf(stdout, "%s  %s  %-14s %-12s %4d wps %4d photos %9.2f %s %9s  %5.1f%%  %s\n",
			p.ID, p.CreatedAt.Format("2006-01-02 15:04"), p.SegmentType, p.Strategy,
			p.WaypointCount, p.Photos, units.ConvertDistance(p.DistanceM, du), du,
			units.FormatDuration(p.TotalSeconds), p.BatteryPercent, p.Name)
	}
	return nil
}

func readJSON(path string, v any) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat request: %w", err)
	}
	if info.Size() > maxRequestSize {
		return fmt.Errorf("request file too large: %d bytes (max %d)", info.Size(), maxRequestSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open request: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to parse request %s: %w", path, err)
	}
	return nil
}
