package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/matijazezelj/degrees/internal/config"
	"github.com/matijazezelj/degrees/internal/graph"
	"github.com/matijazezelj/degrees/internal/loader"
	"github.com/matijazezelj/degrees/internal/search"
	"github.com/matijazezelj/degrees/internal/server"
	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	cfgFile    string
	dataSource string
	logFormat  string
	logLevel   string
	logger     *slog.Logger
	cfg        *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:          "degrees",
		Short:        "degrees: six degrees of Kevin Bacon",
		Long:         "Find the shortest chain of shared movies connecting two performers.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}

			format := cfg.Log.Format
			if cmd.Flags().Changed("log-format") {
				format = logFormat
			}
			level := cfg.Log.Level
			if cmd.Flags().Changed("log-level") {
				level = logLevel
			}
			logger, err = newLogger(cmd.ErrOrStderr(), format, level)
			return err
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./degrees.yaml)")
	root.PersistentFlags().StringVar(&dataSource, "data", "", "dataset: CSV directory, .yaml or .db file (overrides config)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format (text, json)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		pathCmd(),
		peopleCmd(),
		neighborsCmd(),
		statsCmd(),
		dbCmd(),
		graphCmd(),
		serveCmd(),
		versionCmd(),
		completionCmd(),
	)
	return root
}

func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	lvl, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q (use: text, json)", format)
	}
}

func datasetPath() string {
	if dataSource != "" {
		return dataSource
	}
	return cfg.Data.Source
}

// openStore loads the configured dataset and indexes it in memory.
func openStore(ctx context.Context) (*graph.MemoryStore, error) {
	ds, err := loader.Load(ctx, datasetPath(), logger)
	if err != nil {
		return nil, err
	}
	store := ds.Build()

	st := store.Stats()
	if st.SkippedCredits > 0 {
		logger.Warn("skipped credits referencing unknown people or movies", "count", st.SkippedCredits)
	}
	return store, nil
}

// openEngine returns a MemgraphEngine when Memgraph is configured and
// reachable; otherwise the in-memory LocalEngine.
func openEngine(store *graph.MemoryStore) graph.GraphEngine {
	localEngine := graph.NewLocalEngine(store, logger)
	var engine graph.GraphEngine = localEngine

	if cfg.Storage.Memgraph.Enabled {
		mgEngine, err := graph.NewMemgraphEngine(
			cfg.Storage.Memgraph.URI,
			cfg.Storage.Memgraph.Username,
			cfg.Storage.Memgraph.Password,
			localEngine,
			logger,
		)
		if err != nil {
			logger.Warn("memgraph unavailable, using local graph engine", "error", err)
		} else {
			engine = mgEngine
			logger.Info("memgraph connected", "uri", cfg.Storage.Memgraph.URI)
		}
	}
	return engine
}

func searchContext(parent context.Context) (context.Context, context.CancelFunc) {
	if cfg.Search.Timeout > 0 {
		return context.WithTimeout(parent, cfg.Search.Timeout)
	}
	return context.WithCancel(parent)
}

// --- path ---

func pathCmd() *cobra.Command {
	var sourceID, targetID, output string

	cmd := &cobra.Command{
		Use:   "path [source-name] [target-name]",
		Short: "Find the shortest co-starring path between two people",
		Long: `Find the shortest chain of shared movies between two people.

Names are matched case-insensitively. Missing names are prompted for, and
ambiguous names ask which person was meant.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case graph.FormatText, graph.FormatJSON, graph.FormatYAML, graph.FormatDOT, graph.FormatMermaid:
			default:
				return fmt.Errorf("invalid --output %q (use: text, json, yaml, dot, mermaid)", output)
			}

			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			engine := openEngine(store)
			defer engine.Close() //nolint:errcheck // best-effort cleanup

			// names fill whichever endpoints were not given by id
			names := args
			var sourceName, targetName string
			if sourceID == "" {
				sourceName, names = shift(names)
			}
			if targetID == "" {
				targetName, names = shift(names)
			}
			if len(names) > 0 {
				return fmt.Errorf("too many names given alongside --source-id/--target-id")
			}

			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			source, err := resolveEndpoint(store, p, sourceID, sourceName)
			if err != nil {
				return err
			}
			target, err := resolveEndpoint(store, p, targetID, targetName)
			if err != nil {
				return err
			}

			ctx, cancel := searchContext(cmd.Context())
			defer cancel()

			res, err := engine.ShortestPath(ctx, source, target)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("search gave up after %s: %w", cfg.Search.Timeout, err)
				}
				return err
			}

			out, err := graph.ExportPath(store, res, output)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceID, "source-id", "", "source person id (skips name lookup)")
	cmd.Flags().StringVar(&targetID, "target-id", "", "target person id (skips name lookup)")
	cmd.Flags().StringVarP(&output, "output", "o", graph.FormatText, "output format (text, json, yaml, dot, mermaid)")
	return cmd
}

func shift(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}
	return args[0], args[1:]
}

// resolveEndpoint turns an explicit id or a (possibly prompted) name into
// a person id.
func resolveEndpoint(store graph.Store, p *prompter, id, name string) (string, error) {
	if id != "" {
		if !store.HasPerson(id) {
			return "", fmt.Errorf("%w: %s", search.ErrUnknownPerson, id)
		}
		return id, nil
	}
	if name == "" {
		var err error
		if name, err = p.ask("Name: "); err != nil {
			return "", err
		}
	}
	return personIDForName(store, p, name)
}

// --- people / neighbors / stats ---

func peopleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "people <name>",
		Short: "List people matching a name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			ids := store.ResolveName(name)
			if len(ids) == 0 {
				return fmt.Errorf("%w: %q", errPersonNotFound, name)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tBIRTH\tMOVIES")
			for _, id := range ids {
				p, _ := store.Person(id)
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.ID, p.Name, yearString(p.Birth), len(p.Movies))
			}
			return w.Flush()
		},
	}
}

func neighborsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "neighbors <person-id>",
		Short: "List everyone who shared a movie with a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}

			p, ok := store.Person(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", search.ErrUnknownPerson, args[0])
			}
			links := graph.CoStars(store, p.ID)

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Co-stars of %s (%s): %d\n\n", p.Name, p.ID, len(links))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "MOVIE\tTITLE\tYEAR\tID\tNAME")
			for _, l := range links {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.MovieID, l.MovieTitle, yearString(l.MovieYear), l.ToID, l.ToName)
			}
			return w.Flush()
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dataset summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			st := store.Stats()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Dataset: %s\n", datasetPath())
			_, _ = fmt.Fprintf(out, "  People:          %d\n", st.People)
			_, _ = fmt.Fprintf(out, "  Movies:          %d\n", st.Movies)
			_, _ = fmt.Fprintf(out, "  Credits:         %d\n", st.Credits)
			_, _ = fmt.Fprintf(out, "  Skipped credits: %d\n", st.SkippedCredits)
			return nil
		},
	}
}

func yearString(y int) string {
	if y == 0 {
		return ""
	}
	return fmt.Sprintf("%d", y)
}

// --- db ---

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage SQLite datasets",
	}
	cmd.AddCommand(dbImportCmd(), dbStatsCmd())
	return cmd
}

func dbImportCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import <source>",
		Short: "Import a CSV directory or YAML file into a SQLite dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src := args[0]
			if filepath.Clean(src) == filepath.Clean(dbPath) {
				return fmt.Errorf("source and destination are the same file: %s", dbPath)
			}

			ds, err := loader.Load(ctx, src, logger)
			if err != nil {
				return err
			}

			db, err := loader.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // best-effort cleanup

			rec, err := db.Import(ctx, src, ds)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d people, %d movies, %d stars from %s into %s\n",
				rec.Counts.People, rec.Counts.Movies, rec.Counts.Stars, src, dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "./data/degrees.db", "SQLite dataset to write")
	return cmd
}

func dbStatsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show SQLite dataset statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			info, err := os.Stat(dbPath)
			if err != nil {
				return fmt.Errorf("opening dataset: %w", err)
			}

			db, err := loader.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // best-effort cleanup

			counts, err := db.Counts(ctx)
			if err != nil {
				return err
			}
			imports, err := db.Imports(ctx, 10)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Database: %s (%s)\n\n", dbPath, formatBytes(info.Size()))
			_, _ = fmt.Fprintf(out, "People: %d\nMovies: %d\nStars:  %d\n", counts.People, counts.Movies, counts.Stars)

			_, _ = fmt.Fprintf(out, "\nRecent imports: %d\n", len(imports))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, r := range imports {
				_, _ = fmt.Fprintf(w, "  %d\t%s\t%s\t%d/%d/%d\n", r.ID, r.ImportedAt.Format(time.RFC3339), r.Source,
					r.Counts.People, r.Counts.Movies, r.Counts.Stars)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "./data/degrees.db", "SQLite dataset to inspect")
	return cmd
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// --- graph ---

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage the Memgraph mirror",
	}
	cmd.AddCommand(graphSyncCmd())
	return cmd
}

func graphSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Mirror the dataset into Memgraph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cfg.Storage.Memgraph.Enabled {
				return fmt.Errorf("memgraph is not enabled in configuration (set storage.memgraph.enabled: true)")
			}

			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}

			connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			driver, err := graph.NewDriver(connectCtx, cfg.Storage.Memgraph.URI, cfg.Storage.Memgraph.Username, cfg.Storage.Memgraph.Password)
			cancel()
			if err != nil {
				return fmt.Errorf("connecting to memgraph: %w", err)
			}
			defer driver.Close(context.Background()) //nolint:errcheck // best-effort cleanup

			st, err := graph.SyncToMemgraph(ctx, store, driver, logger)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Synced %d people, %d movies, %d credits to %s\n",
				st.People, st.Movies, st.Credits, cfg.Storage.Memgraph.URI)
			return nil
		},
	}
}

// --- serve ---

func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the read-only HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			engine := openEngine(store)

			if listen == "" {
				listen = cfg.Server.Listen
			}

			srv := server.New(store, engine, logger, server.Options{
				Listen:        listen,
				APIToken:      cfg.Server.APIToken,
				CORSOrigin:    cfg.Server.CORSOrigin,
				SearchTimeout: cfg.Search.Timeout,
			})

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
				_ = engine.Close()
			}()

			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config or :8080)")
	return cmd
}

// --- version ---

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "degrees %s\n", version)
		},
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (use: debug, info, warn, error)", s)
	}
}

func completionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for degrees.

To load completions:

Bash:
  $ source <(degrees completion bash)

Zsh:
  $ degrees completion zsh > "${fpath[1]}/_degrees"

Fish:
  $ degrees completion fish | source

PowerShell:
  PS> degrees completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
