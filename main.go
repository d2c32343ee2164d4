package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mikaelreiersolmoen/tracedog/internal/collector"
	"github.com/mikaelreiersolmoen/tracedog/internal/config"
	"github.com/mikaelreiersolmoen/tracedog/internal/trace"
	"github.com/mikaelreiersolmoen/tracedog/internal/ui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	var (
		name        string
		command     string
		file        string
		logFile     string
		metricsAddr string
		capacity    int
		latency     time.Duration
		window      float64
		replacing   bool
	)
	flag.StringVar(&name, "name", "trace", "Trace name shown in the header and metric labels")
	flag.StringVar(&command, "cmd", "", "Shell command whose output lines are streamed as samples")
	flag.StringVar(&command, "c", "", "Shell command (shorthand)")
	flag.StringVar(&file, "file", "", "Properties file of x=y samples to load instead of a live source")
	flag.StringVar(&logFile, "log-file", "", "Write debug logs to this file")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	flag.IntVar(&capacity, "capacity", 0, "Maximum number of samples kept (overrides saved preference)")
	flag.DurationVar(&latency, "latency", 0, "Sampling interval for the random source (overrides saved preference)")
	flag.Float64Var(&window, "window", -1, "Show only the last N units of x (0 disables)")
	flag.BoolVar(&replacing, "replacing", false, "Update samples with an existing x instead of appending")
	flag.Parse()

	prefs, _, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		prefs = config.Defaults()
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "capacity":
			prefs.Capacity = capacity
		case "latency":
			prefs.LatencyMs = int(latency / time.Millisecond)
		case "window":
			prefs.Window = window
		case "replacing":
			prefs.Replacing = replacing
		}
	})
	prefs = prefs.Normalize()

	logger, err := newLogger(logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	opts := []trace.Option{
		trace.WithReplacing(prefs.Replacing),
		trace.WithLogger(logger),
	}
	var metricsServer *http.Server
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, trace.WithMetrics(reg))
		metricsServer = serveMetrics(metricsAddr, reg, logger)
	}

	tr, err := trace.New(name, prefs.Capacity, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var source ui.Collector
	switch {
	case file != "":
		if err := loadFile(tr, file); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case command != "":
		source = collector.NewCommandReader(tr, logger, "sh", "-c", command)
	default:
		source = collector.NewManager(collector.NewRandomWalk(nil), tr, prefs.Latency(), logger)
	}

	p := tea.NewProgram(
		ui.NewModel(tr, source, prefs, logger),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		metricsServer.Shutdown(ctx)
		cancel()
	}
	if err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}

	if m, ok := final.(ui.Model); ok {
		if err := config.Save(m.Preferences()); err != nil {
			logger.Warn("saving preferences failed", zap.Error(err))
		}
		if err := m.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return logger, nil
}

func loadFile(tr *trace.Trace, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open samples: %w", err)
	}
	defer f.Close()

	if _, err := collector.LoadProperties(tr, f); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
