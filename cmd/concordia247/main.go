package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/concordia247/drafts/internal/app"
	"github.com/concordia247/drafts/internal/config"
	"github.com/concordia247/drafts/internal/logger"
	"github.com/concordia247/drafts/internal/metrics"
	"github.com/concordia247/drafts/internal/monitor"
	"github.com/concordia247/drafts/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	var cfg config.Config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		logger.Init(cfg.Debug)
		return cmd.Execute(args)
	}

	mustAdd(parser.AddCommand("run", "Collect sources and write new drafts",
		"Reads every configured feed and sitemap, filters and summarizes new items, writes drafts and updates the seen ledger.",
		&runCommand{cfg: &cfg}))
	mustAdd(parser.AddCommand("refresh", "Re-render the drafts of one date",
		"Fetches the canonical URL of each draft dated --date again and rewrites the draft when its text changed.",
		&refreshCommand{cfg: &cfg}))
	mustAdd(parser.AddCommand("touch", "Stamp the review log",
		"Moves the 'Última actualización' line of the review log to the end with the current UTC time.",
		&touchCommand{cfg: &cfg}))
	mustAdd(parser.AddCommand("serve", "Run on a schedule with a monitoring endpoint",
		"Runs the pipeline on a cron schedule and serves /health and /metrics.",
		&serveCommand{cfg: &cfg}))

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func mustAdd(_ *flags.Command, err error) {
	if err != nil {
		panic(err)
	}
}

type runCommand struct {
	cfg *config.Config
}

func (c *runCommand) Execute([]string) error {
	a, err := app.New(c.cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := a.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println(res)
	return nil
}

type refreshCommand struct {
	cfg  *config.Config
	Date string `long:"date" required:"true" description:"Draft date to refresh (YYYY-MM-DD)"`
}

func (c *refreshCommand) Execute([]string) error {
	a, err := app.New(c.cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := a.Refresh(ctx, c.Date)
	if err != nil {
		return err
	}
	fmt.Println(res)
	return nil
}

type touchCommand struct {
	cfg *config.Config
}

func (c *touchCommand) Execute([]string) error {
	a, err := app.New(c.cfg)
	if err != nil {
		return err
	}
	if err := a.Touch(); err != nil {
		return err
	}
	fmt.Println("updated", a.ReviewLogPath())
	return nil
}

type serveCommand struct {
	cfg        *config.Config
	Schedule   string `long:"schedule" env:"SCHEDULE" default:"@every 1h" description:"Cron schedule for runs"`
	Addr       string `long:"addr" env:"MONITORING_ADDR" default:":8080" description:"Listen address for /health and /metrics"`
	RunOnStart bool   `long:"run-on-start" env:"RUN_ON_START" description:"Run once immediately before the first tick"`
}

func (c *serveCommand) Execute([]string) error {
	a, err := app.New(c.cfg)
	if err != nil {
		return err
	}
	log := logger.For("serve")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := func(ctx context.Context) {
		res, err := a.Run(ctx)
		if err != nil {
			log.Error("scheduled run failed", "error", err)
			return
		}
		log.Info("scheduled run done", "result", res.String())
	}

	sched, err := scheduler.New(ctx, c.Schedule, job, logger.For("scheduler"))
	if err != nil {
		return err
	}

	srv := monitor.NewServer(c.Addr, metrics.Global, map[string]monitor.Stats{"fetcher": a.FetchStats}, logger.For("monitor"))
	go func() {
		log.Info("monitoring server listening", "addr", c.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("monitoring server stopped", "error", err)
			stop()
		}
	}()

	if c.RunOnStart {
		job(ctx)
	}
	sched.Start()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sched.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}
