package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"typegen/internal/config"
	"typegen/internal/generator"
	"typegen/internal/pipeline"
	"typegen/internal/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:               "typegen",
		Short:             "Extract and resolve QML type documentation from annotated sources",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	configPath    string
	dbPath        string
	reportPath    string
	format        string
	parserBackend string
	logLevel      string
	jobs          int
	noBuiltins    bool

	cfg *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the typegen config file (YAML)")
	flags.StringVarP(&dbPath, "db", "d", "", "Path to the SQLite typespec store (disabled when empty)")
	flags.StringVar(&reportPath, "report", "", "Write a JSON run report to this path")
	flags.StringVarP(&format, "format", "f", "json", "Type document format: json or yaml")
	flags.StringVar(&parserBackend, "parser", "native", "Header block locator: native or treesitter")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.IntVarP(&jobs, "jobs", "j", 0, "Modules processed in parallel (defaults to the CPU count)")
	flags.BoolVar(&noBuiltins, "no-builtins", false, "Do not merge the builtin Qt type mappings")

	rootCmd.AddCommand(gentypesCmd)
	rootCmd.AddCommand(gendocsCmd)
	rootCmd.AddCommand(fulltypegenCmd)
	rootCmd.AddCommand(validateCmd)
}

// setup loads the config file and lets explicitly set flags override it.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		loaded.Store.Path = dbPath
	}
	if flags.Changed("report") {
		loaded.Output.Report = reportPath
	}
	if flags.Changed("format") {
		loaded.Output.Format = format
	}
	if flags.Changed("parser") {
		loaded.Parser.Backend = parserBackend
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if flags.Changed("jobs") {
		loaded.Jobs = jobs
	}
	if flags.Changed("no-builtins") {
		loaded.NoBuiltins = noBuiltins
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: loaded.SlogLevel()})))
	cfg = loaded
	return nil
}

// initTypegen builds the pipeline from the active config. The returned
// finish func saves the run report and closes the store.
func initTypegen(cmd *cobra.Command, mode string) (*pipeline.Typegen, func() error, error) {
	opts := pipeline.Options{
		Backend:    cfg.Parser.Backend,
		Format:     cfg.Output.Format,
		Jobs:       cfg.Jobs,
		NoBuiltins: cfg.NoBuiltins,
		Excludes:   cfg.Crawler.Exclude,
		Logger:     slog.Default(),
		Out:        cmd.OutOrStdout(),
	}

	var store *storage.SQLiteStore
	if cfg.Store.Path != "" {
		s, err := storage.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		store = s
		opts.Store = s
	}
	if cfg.Output.Report != "" {
		opts.Report = generator.NewRunReport(mode)
	}

	tg, err := pipeline.New(opts)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}

	finish := func() error {
		if store != nil {
			defer store.Close()
		}
		if err := opts.Report.Save(cfg.Output.Report); err != nil {
			return fmt.Errorf("failed to save run report: %w", err)
		}
		return nil
	}
	return tg, finish, nil
}

// run executes fn with a pipeline and always finishes it.
func run(cmd *cobra.Command, mode string, fn func(*pipeline.Typegen) error) (err error) {
	tg, finish, err := initTypegen(cmd, mode)
	if err != nil {
		return err
	}
	defer func() {
		if ferr := finish(); err == nil {
			err = ferr
		}
	}()
	return fn(tg)
}
