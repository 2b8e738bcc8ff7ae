package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashcal/internal/capture"
	"dashcal/internal/config"
	"dashcal/internal/ics"
	appLog "dashcal/internal/log"
	"dashcal/internal/refresh"
	"dashcal/internal/store"
	"dashcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	debug      bool
}

func main() {
	flags := parseFlags()
	defer appLog.Sync()

	if err := config.LoadDotEnv(); err != nil {
		appLog.Error("failed to load .env", err)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.debug {
		conf.LogLevel = string(appLog.LevelDebug)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	if err := refresh.ValidateSpec(conf.RefreshCron); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}

	appLog.Info("dashcal starting",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"default_view", conf.DefaultView,
		"refresh", conf.RefreshCron,
		"ics_count", len(conf.ICS),
		"seed_mock", conf.SeedMock,
		"capture", conf.Capture.Enabled,
		"once", flags.once,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loc := web.ResolveLocation(conf.Timezone)
	st := store.New()
	if conf.SeedMock {
		n := st.Seed(time.Now().In(loc))
		appLog.Info("seeded demo events", "count", n)
	}

	refresher := &refresh.Refresher{
		Fetcher:  ics.NewFetcher(""),
		Sink:     st,
		Sources:  sourcesFromConfig(conf.ICS),
		Location: loc,
	}
	if err := refresher.RunOnce(ctx); err != nil {
		appLog.Error("initial refresh had errors", err)
	}

	srv := web.NewServer(conf, st, flags.debug)

	if flags.once {
		if err := runOnce(ctx, srv, conf); err != nil {
			appLog.Error("single-shot snapshot failed", err)
			os.Exit(1)
		}
		appLog.Info("dashcal exiting")
		return
	}

	if conf.Capture.Enabled {
		refresher.AfterRun = func(ctx context.Context) {
			if err := capture.Snapshot(ctx, snapshotOptions(conf)); err != nil {
				appLog.Error("scheduled snapshot failed", err)
			}
		}
	}
	if err := refresher.Start(ctx, conf.RefreshCron); err != nil {
		appLog.Error("failed to start refresh scheduler", err)
		os.Exit(1)
	}

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}
	appLog.Info("dashcal exiting")
}

// runOnce serves the calendar page just long enough to take one snapshot.
func runOnce(ctx context.Context, srv *web.Server, conf *config.Config) error {
	srvCtx, stop := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(srvCtx) }()

	opts := snapshotOptions(conf)
	err := waitHealthy(ctx, opts.BaseURL, errCh)
	if err == nil {
		err = capture.Snapshot(ctx, opts)
	}

	stop()
	if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
		err = serveErr
	}
	return err
}

// waitHealthy polls /health until the server answers.
func waitHealthy(ctx context.Context, baseURL string, errCh <-chan error) error {
	client := &http.Client{Timeout: time.Second}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(10 * time.Second)

	for {
		resp, err := client.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-deadline:
			return errors.New("server did not become healthy")
		case <-ticker.C:
		}
	}
}

func snapshotOptions(conf *config.Config) capture.Options {
	opts := capture.Options{
		BaseURL:    baseURL(conf.Listen),
		Mode:       conf.Capture.Mode,
		OutputPath: conf.Capture.Output,
		Width:      conf.Capture.Width,
		Height:     conf.Capture.Height,
	}
	if conf.BasicAuth != nil {
		opts.Username = conf.BasicAuth.Username
		opts.Password = conf.BasicAuth.Password
	}
	return opts
}

// baseURL turns a listen address into a URL the local browser can reach.
func baseURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func sourcesFromConfig(feeds []config.ICSConfig) []ics.Source {
	sources := make([]ics.Source, 0, len(feeds))
	for _, f := range feeds {
		sources = append(sources, ics.Source{ID: f.ID, URL: f.URL, Path: f.Path})
	}
	return sources
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Refresh feeds, write one snapshot and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
