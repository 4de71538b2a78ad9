package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/carbonscope/co2-diagnostics/internal/api/http"
	"github.com/carbonscope/co2-diagnostics/internal/cmip"
	"github.com/carbonscope/co2-diagnostics/internal/config"
	"github.com/carbonscope/co2-diagnostics/internal/confront"
	"github.com/carbonscope/co2-diagnostics/internal/diag"
	"github.com/carbonscope/co2-diagnostics/internal/logging"
	"github.com/carbonscope/co2-diagnostics/internal/recipe"
	"github.com/carbonscope/co2-diagnostics/internal/scheduler"
)

const usage = `Usage: co2-diagnostics <command> [flags]

Commands:
  timeseries   windowed and monthly-resampled station observations
  annual       mean annual cycle and yearly anomalies per station
  trends       station observations confronted with a model
  cycles       seasonal-cycle confrontation with a model
  serve        run the HTTP API

Run "co2-diagnostics <command> -h" for the command's flags.
`

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logging.New(cfg, "co2-diagnostics")
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sources := buildSources(cfg, logger)
	runner := recipe.NewRunner(sources, logger)

	switch cmd := os.Args[1]; cmd {
	case "timeseries":
		err = runTimeseries(os.Args[2:], cfg, runner)
	case "annual":
		err = runAnnual(os.Args[2:], cfg, runner)
	case "trends":
		err = runTrends(ctx, "trends", os.Args[2:], cfg, runner, confront.ModeTrend)
	case "cycles":
		err = runTrends(ctx, "cycles", os.Args[2:], cfg, runner, confront.ModeCycle)
	case "serve":
		err = serve(ctx, cfg, logger, runner, sources)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error("command failed", "error", err)
		var verr *diag.ValidationError
		if errors.As(err, &verr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// buildSources assembles the model sources, keyed by load method. The
// remote archive joins only when a base URL is configured.
func buildSources(cfg *config.AppConfig, logger *slog.Logger) map[string]cmip.Source {
	sources := map[string]cmip.Source{
		"local": cmip.NewLocalSource(cfg.ModelDir, logger),
	}
	if cfg.ArchiveURL != "" {
		client := &http.Client{Timeout: cfg.HTTPTimeout}
		sources["remote"] = cmip.NewRemoteSource(cfg.ArchiveURL, cfg.CacheDir, client, logger)
	}
	return sources
}

// bindRecipeFlags declares the flags shared by every recipe command.
func bindRecipeFlags(fs *flag.FlagSet, cfg *config.AppConfig) (*config.RecipeOptions, *string) {
	opts := &config.RecipeOptions{}
	fs.StringVar(&opts.RefData, "ref-data", cfg.ObsDir, "observation data directory")
	fs.StringVar(&opts.StationCode, "station", "mlo", `station code, or "all" for every station with data`)
	list := fs.String("stations", "", "comma-separated station codes (overrides -station)")
	fs.StringVar(&opts.StartYr, "start-yr", "", "first year of the window, e.g. 1980")
	fs.StringVar(&opts.EndYr, "end-yr", "", "last year of the window, e.g. 2015")
	fs.StringVar(&opts.FigureSavepath, "savepath", "", "base path for exported tables")
	return opts, list
}

func applyStationList(opts *config.RecipeOptions, list string) {
	if list != "" {
		opts.StationList = strings.Split(list, ",")
	}
}

func runTimeseries(args []string, cfg *config.AppConfig, runner *recipe.Runner) error {
	fs := flag.NewFlagSet("timeseries", flag.ContinueOnError)
	opts, list := bindRecipeFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	applyStationList(opts, *list)

	res, err := runner.Timeseries(opts)
	if err != nil {
		return err
	}
	for _, ss := range res.Stations {
		fmt.Printf("%s (%s): %d rows\n", ss.Station.Code, ss.Station.Name, ss.Combined.Nrow())
		if opts.FigureSavepath == "" {
			fmt.Println(ss.Combined)
		}
	}
	return nil
}

func runAnnual(args []string, cfg *config.AppConfig, runner *recipe.Runner) error {
	fs := flag.NewFlagSet("annual", flag.ContinueOnError)
	opts, list := bindRecipeFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	applyStationList(opts, *list)

	res, err := runner.Annual(opts)
	if err != nil {
		return err
	}
	for _, sa := range res.Stations {
		fmt.Printf("%s (%s): %d years\n", sa.Station.Code, sa.Station.Name, len(sa.Yearly))
		if opts.FigureSavepath == "" {
			fmt.Println(confront.CycleFrame(sa.Cycle))
		}
	}
	return nil
}

func runTrends(ctx context.Context, name string, args []string, cfg *config.AppConfig, runner *recipe.Runner, mode confront.Mode) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	opts, list := bindRecipeFlags(fs, cfg)
	fs.StringVar(&opts.ModelName, "model", "", "CMIP model name, e.g. CESM2")
	fs.StringVar(&opts.CMIPLoadMethod, "method", "local", "model source: local or remote")
	global := fs.Bool("globalmean", false, "compare against the global surface mean instead of the nearest cell")
	fs.BoolVar(&opts.Difference, "difference", false, "append a model minus observations column")
	if err := fs.Parse(args); err != nil {
		return err
	}
	applyStationList(opts, *list)
	if *global {
		opts.GlobalMean = "global"
	}

	res, err := runner.Trends(ctx, opts, mode)
	if err != nil {
		return err
	}
	for _, cr := range res.Results {
		if cr.Cell != nil {
			fmt.Printf("%s vs %s at cell (%.2f, %.2f): %d rows\n",
				cr.Station.Code, res.Model, cr.Cell.Lat, cr.Cell.Lon, cr.Aligned.Nrow())
		} else {
			fmt.Printf("%s vs %s global mean: %d rows\n",
				cr.Station.Code, res.Model, cr.Aligned.Nrow())
		}
		if opts.FigureSavepath == "" {
			fmt.Println(cr.Aligned)
		}
	}
	return nil
}

func serve(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger, runner *recipe.Runner, sources map[string]cmip.Source) error {
	catalog := cmip.NewCatalog()
	sourceList := make([]cmip.Source, 0, len(sources))
	for _, src := range sources {
		sourceList = append(sourceList, src)
	}
	sort.Slice(sourceList, func(i, j int) bool { return sourceList[i].Name() < sourceList[j].Name() })

	// Fill the catalog once at startup, then keep it fresh in the background.
	go func() {
		rctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		if err := cmip.RefreshCatalog(rctx, catalog, sourceList...); err != nil {
			logger.Warn("initial catalog refresh failed", "error", err)
		}
	}()

	sched := scheduler.New(catalog, sourceList, cfg.CatalogRefresh, logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "co2-diagnostics",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "co2-diagnostics",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, runner, catalog, cfg.ObsDir)

	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
