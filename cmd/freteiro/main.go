package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dgallion1/freteiro/internal/config"
	"github.com/dgallion1/freteiro/internal/parser"
	"github.com/dgallion1/freteiro/internal/pipeline"
	"github.com/dgallion1/freteiro/internal/pricing"
	"github.com/dgallion1/freteiro/internal/report"
	"github.com/dgallion1/freteiro/internal/tariff"
)

// jobSummary is one line of stdout per input file.
type jobSummary struct {
	pipeline.JobSnapshot
	Totals *pricing.Totals `json:"totals,omitempty"`
}

func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func profileNames() string {
	var names []string
	for _, p := range tariff.Profiles() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

// printTariffs writes one line per region: the rate for each profile and
// the cities that resolve to it.
func printTariffs(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "REGIÃO\t%s\tCIDADES\n", strings.ReplaceAll(profileNames(), ", ", "\t"))
	for _, r := range tariff.Regions() {
		if r == tariff.Unresolved {
			continue
		}
		row := []string{string(r)}
		for _, p := range tariff.Profiles() {
			row = append(row, tariff.Lookup(r, p).StringFixed(2))
		}
		row = append(row, strings.Join(tariff.Cities(r), ", "))
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func main() {
	var (
		configPath = flag.String("config", "", "config file (yaml, json or toml)")
		profile    = flag.String("profile", "", "vehicle profile: "+profileNames())
		provider   = flag.String("provider", "", "provider name for the report header")
		date       = flag.String("date", "", "report date DD/MM/YYYY (defaults to today)")
		out        = flag.String("out", "", "output directory for workbooks")
		workers    = flag.Int("workers", 0, "number of concurrent workers")
		tariffs    = flag.Bool("tariffs", false, "print the freight table and known cities, then exit")
	)
	flag.Usage = func() {
		printError("usage: freteiro [flags] report.pdf [report2.pdf ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *tariffs {
		printTariffs(os.Stdout)
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *profile != "" {
		p, err := tariff.ParseProfile(*profile)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		cfg.Profile = p
	}
	if *provider != "" {
		cfg.Provider = *provider
	}
	if *date != "" {
		if _, err := time.Parse(report.DateLayout, *date); err != nil {
			printError("Error: invalid --date, use DD/MM/YYYY: %v\n", err)
			os.Exit(1)
		}
		cfg.ReportDate = *date
	}
	if *out != "" {
		cfg.OutputDir = *out
	}
	if *workers > 0 {
		cfg.WorkerCount = *workers
	}
	if cfg.MaxQueueSize < flag.NArg() {
		cfg.MaxQueueSize = flag.NArg()
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch := pipeline.NewOrchestrator(cfg, log)
	orch.Start(ctx)

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("interrupted, cancelling jobs")
		cancel()
	}()

	log.Info("starting freteiro", "files", flag.NArg(), "profile", cfg.Profile, "workers", cfg.WorkerCount, "output_dir", cfg.OutputDir)

	failed := 0
	for _, path := range flag.Args() {
		if !parser.IsSupportedExtension(path) {
			log.Warn("skipping unsupported file", "path", path)
			failed++
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("failed to read file", "path", path, "error", err)
			failed++
			continue
		}
		if err := orch.Submit(pipeline.NewJob(path, data)); err != nil {
			log.Error("failed to queue file", "path", path, "error", err)
			failed++
		}
	}
	log.Info("queued files", "queue_depth", orch.QueueDepth())
	orch.Drain()

	enc := json.NewEncoder(os.Stdout)
	for _, job := range orch.Jobs() {
		summary := jobSummary{JobSnapshot: job.Snapshot()}
		if res := job.Result(); res != nil {
			summary.Totals = &res.Totals
		}
		if summary.Status != pipeline.StatusCompleted && summary.Status != pipeline.StatusDupSkipped {
			failed++
		}
		if err := enc.Encode(summary); err != nil {
			log.Error("failed to write summary", "error", err)
		}
	}

	if failed > 0 {
		log.Warn("finished with failures", "failed", failed)
		os.Exit(1)
	}
	log.Info("done")
}
