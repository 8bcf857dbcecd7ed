package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/jengzang/parcours-backend-go/internal/app"
	"github.com/jengzang/parcours-backend-go/internal/config"
	"github.com/jengzang/parcours-backend-go/internal/database"
	"github.com/jengzang/parcours-backend-go/internal/logging"
	"github.com/jengzang/parcours-backend-go/internal/models"
	"github.com/jengzang/parcours-backend-go/internal/render"
	"github.com/jengzang/parcours-backend-go/internal/service"
	"github.com/jengzang/parcours-backend-go/internal/temporal"
)

const usage = `usage: parcoursctl <command> [flags]

commands:
  stats       print the aggregate statistics of a range as JSON
  render      write the parcours map to a PNG file
  import-gpx  load a GPX file into the sample store
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console", Output: os.Stderr})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var run func(context.Context, *config.Config, []string) error
	switch os.Args[1] {
	case "stats":
		run = runStats
	case "render":
		run = runRender
	case "import-gpx":
		run = runImport
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(ctx, cfg, os.Args[2:]); err != nil {
		logging.Error().Err(err).Str("command", os.Args[1]).Msg("[CLI] failed")
		os.Exit(1)
	}
}

// open returns the assembled components; call the returned func when done
func open(ctx context.Context, cfg *config.Config) (*app.Components, func(), error) {
	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		return nil, nil, err
	}
	comps, err := app.Build(ctx, cfg, db, nil)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return comps, func() {
		comps.Close()
		db.Close()
	}, nil
}

func runStats(ctx context.Context, cfg *config.Config, args []string) error {
	def := models.DefaultAggregateParams()
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fromFlag := fs.String("from", "", "range start: epoch seconds, RFC 3339 or YYYY-MM-DD")
	toFlag := fs.String("to", "", "range end: epoch seconds, RFC 3339 or YYYY-MM-DD")
	tz := fs.Float64("tz", cfg.UTCOffsetHours, "UTC offset in hours used for day boundaries")
	modulo := fs.Int("modulo", def.Stride, "keep every n-th sample")
	minSpeed := fs.Float64("min-speed", def.MinSpeedKmh, "moving threshold in km/h")
	fillAlt := fs.Bool("fill-alt", def.FillAltitude, "carry the last altitude over missing values")
	elevMin := fs.Float64("elev-min-delta", def.ElevationNoiseFloor, "ignore altitude changes below this many meters")
	_ = fs.Parse(args)

	from, err := temporal.ParseOptionalInstant(*fromFlag)
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	to, err := temporal.ParseOptionalInstant(*toFlag)
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}

	comps, done, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	result, err := comps.Service.Stats(ctx, models.StatsParams{
		From: from,
		To:   to,
		AggregateParams: models.AggregateParams{
			UTCOffsetHours:      *tz,
			Stride:              *modulo,
			MinSpeedKmh:         *minSpeed,
			FillAltitude:        *fillAlt,
			ElevationNoiseFloor: *elevMin,
		},
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runRender(ctx context.Context, cfg *config.Config, args []string) error {
	p := render.DefaultParams(cfg.MapZoom)
	p.TileSize = cfg.TileSize
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	out := fs.String("out", "parcours.png", "output file")
	fs.IntVar(&p.Width, "w", p.Width, "image width")
	fs.IntVar(&p.Height, "h", p.Height, "image height")
	fs.IntVar(&p.Stride, "modulo", p.Stride, "keep every n-th sample")
	fs.IntVar(&p.Weight, "weight", p.Weight, "line width in pixels")
	fs.StringVar(&p.Color, "color", p.Color, "line color, rrggbb or rrggbbaa")
	fs.IntVar(&p.Zoom, "z", p.Zoom, "zoom level")
	mode := fs.String("render", string(models.RenderServer), "server or provider")
	_ = fs.Parse(args)
	p.Mode = models.ParseRenderMode(*mode)

	comps, done, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	res, err := comps.Service.Render(ctx, p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, res.Body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}
	logging.Info().Str("file", *out).Int("bytes", len(res.Body)).Str("key", res.CacheKey).Msg("[CLI] render written")
	return nil
}

func runImport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import-gpx", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: parcoursctl import-gpx <file.gpx>")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", fs.Arg(0), err)
	}
	samples, skipped, err := service.SamplesFromGPX(data)
	if err != nil {
		return err
	}

	comps, done, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	n, err := comps.Repository.InsertBatch(ctx, samples)
	if err != nil {
		return err
	}
	logging.Info().Int("inserted", n).Int("skipped", skipped).Str("file", fs.Arg(0)).Msg("[CLI] gpx imported")
	return nil
}
