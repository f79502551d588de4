package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"typegen/internal/config"
	"typegen/internal/generator"
	"typegen/internal/pipeline"
)

// main runs a full generation described entirely by typegen.yaml.
func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Paths.Base == "" {
		log.Fatalf("paths.base is not set in %s", config.DefaultPath)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	var report *generator.RunReport
	if cfg.Output.Report != "" {
		report = generator.NewRunReport("fulltypegen")
	}

	// 2. Initialize Pipeline
	tg, err := pipeline.New(pipeline.Options{
		Backend:    cfg.Parser.Backend,
		Format:     cfg.Output.Format,
		Jobs:       cfg.Jobs,
		NoBuiltins: cfg.NoBuiltins,
		Excludes:   cfg.Crawler.Exclude,
		Report:     report,
		Logger:     logger,
		Out:        os.Stdout,
	})
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}

	// 3. Generate
	p := cfg.Paths
	if err := tg.FullTypegen(context.Background(), p.Base, p.Types, p.Data, p.Templates, p.Extra); err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	if err := report.Save(cfg.Output.Report); err != nil {
		log.Fatalf("Failed to save run report: %v", err)
	}
	fmt.Printf("Process complete! Documents in %s, pages in %s.\n", p.Data, p.Templates)
}
