// Command lxgraph extracts a static call graph from a C/C++ codebase
// described by a Clang compilation database and emits it as Graphviz
// DOT. See spec.md for the full pipeline this orchestrates.
package main

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/summaryInfo/lxgraph/internal/callgraph"
	"github.com/summaryInfo/lxgraph/internal/compiledb"
	"github.com/summaryInfo/lxgraph/internal/config"
	"github.com/summaryInfo/lxgraph/internal/dot"
	"github.com/summaryInfo/lxgraph/internal/errorsx"
	"github.com/summaryInfo/lxgraph/internal/filter"
	"github.com/summaryInfo/lxgraph/internal/index"
	"github.com/summaryInfo/lxgraph/internal/logx"
	"github.com/summaryInfo/lxgraph/internal/merge"
	"github.com/summaryInfo/lxgraph/internal/parse"
	"github.com/summaryInfo/lxgraph/internal/workerpool"
)

// version is overridden at link time the way cmd/lci/main.go's own
// Version var is; lxgraph has no release pipeline of its own, so it
// stays "dev" unless set with -ldflags.
var version = "dev"

func main() {
	app := buildApp()
	if err := app.Run(os.Args); err != nil {
		logx.Fatalf("%v", err)
	}
}

// buildApp constructs the urfave/cli.App. Its --flag/-x pairs are
// listed by hand in buildFlags under the same names as config.Table's
// keys; they are not generated from config.Table — mirrors
// cmd/lci/main.go's single *cli.App with UseShortOptionHandling.
func buildApp() *cli.App {
	return &cli.App{
		Name:                   config.ProgName,
		Usage:                  "extract a static call graph from a C/C++ compilation database",
		// Mirrors main.c's usage_string(): the config-file grammar's
		// per-option help text is reused verbatim for the CLI's own
		// help output, rather than maintained separately, so the two
		// surfaces never describe an option differently.
		Description:            strings.Join(config.UsageLines(), "\n"),
		Version:                version,
		UseShortOptionHandling: true,
		Flags:                  buildFlags(),
		Action:                 run,
	}
}

func buildFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"C"}, Usage: "Configuration file path"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file path (- or empty means stdout)", Value: "graph.dot"},
		&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Compilation database directory", Value: "."},
		&cli.IntFlag{Name: "threads", Aliases: []string{"T"}, Usage: "Number of worker threads (1-32, default is number of cores + 1)"},
		&cli.IntFlag{Name: "log-level", Aliases: []string{"L"}, Usage: "Verbosity, 0-4", Value: 3},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: "Shorthand for --log-level=0"},
		&cli.StringFlag{Name: "lod", Usage: "Level of detail: function or file", Value: "function"},
		&cli.BoolFlag{Name: "inline", Usage: "Keep inline functions", Value: true},
		&cli.BoolFlag{Name: "static", Usage: "Keep static functions (no filter stage reads this option, so it does not change the graph)", Value: true},
		&cli.StringSliceFlag{Name: "exclude-files", Usage: "Files (or globs) to exclude from the graph"},
		&cli.StringSliceFlag{Name: "exclude-functions", Usage: "Functions to exclude from the graph"},
		&cli.StringSliceFlag{Name: "root-files", Usage: "Files whose functions are forward-reachability roots"},
		&cli.StringSliceFlag{Name: "root-functions", Usage: "Functions that are forward-reachability roots"},
		&cli.StringSliceFlag{Name: "reverse-root-files", Usage: "Files whose functions are reverse-reachability roots"},
		&cli.StringSliceFlag{Name: "reverse-root-functions", Usage: "Functions that are reverse-reachability roots"},
	}
	return flags
}

func run(c *cli.Context) error {
	cfg := loadConfig(c)
	logx.SetLevel(logx.Level(cfg.LogLevel))

	commands, err := compiledb.Load(cfg.BuildDir)
	if err != nil {
		return err
	}
	logx.Infof("lxgraph: loaded %d compile commands from %q", len(commands), cfg.BuildDir)

	nproc := resolveThreads(cfg.NThreads)
	pool := workerpool.New(context.Background(), nproc)
	defer pool.Shutdown()

	shards := make([]*callgraph.Graph, nproc)
	for i := range shards {
		shards[i] = callgraph.New()
	}

	batches := compiledb.Batches(commands, 16)
	if err := parse.Shards(pool, batches, shards); err != nil {
		return err
	}

	graph, err := merge.Reduce(pool, shards)
	if err != nil {
		return err
	}
	logx.Infof("lxgraph: merged %d functions, %d edges", len(graph.Defs), len(graph.Edges))

	index.Build(graph)
	graph = filter.Run(graph, filter.FromConfig(cfg))
	graph.SortDefsByFile()

	out, closeOut, err := openOutput(cfg.OutputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	return dot.Write(out, graph, cfg.LOD)
}

// loadConfig applies spec.md §6's layering: built-in defaults, then a
// config file (if one is found per the three-step search order), then
// explicit CLI flags, which always win.
func loadConfig(c *cli.Context) *config.Config {
	cfg := config.Default()
	config.ApplyDefaults(cfg)

	explicitPath := c.String("config")
	buildDir := c.String("path")
	if buildDir != "" {
		cfg.BuildDir = buildDir
	}
	config.Load(cfg, explicitPath, buildDir)

	applyFlagOverrides(c, cfg)
	if c.Bool("quiet") {
		cfg.LogLevel = 0
	}
	return cfg
}

// stringFlags/intFlags/boolFlags classify config.Table's scalar
// entries by which *cli.Context accessor reads their flag value, so
// applyFlagOverrides can route every one of them through the same
// config.SetOption the config-file parser uses — out-of-range values
// (e.g. --threads=99) get the same clamping a config-file entry would.
var (
	stringFlags = map[string]bool{"config": true, "out": true, "path": true, "lod": true}
	intFlags    = map[string]bool{"log-level": true, "threads": true}
	boolFlags   = map[string]bool{"inline": true, "static": true}
)

func applyFlagOverrides(c *cli.Context, cfg *config.Config) {
	for name := range stringFlags {
		if c.IsSet(name) {
			setScalar(cfg, name, c.String(name))
		}
	}
	for name := range intFlags {
		if c.IsSet(name) {
			setScalar(cfg, name, strconv.Itoa(c.Int(name)))
		}
	}
	for name := range boolFlags {
		if c.IsSet(name) {
			setScalar(cfg, name, strconv.FormatBool(c.Bool(name)))
		}
	}

	// Each value is appended to the array the config file left, and an
	// empty value clears it, the same as an array entry in the file.
	for _, name := range []string{
		"exclude-files", "exclude-functions",
		"root-files", "root-functions",
		"reverse-root-files", "reverse-root-functions",
	} {
		if !c.IsSet(name) {
			continue
		}
		for _, v := range c.StringSlice(name) {
			if err := config.AppendArray(cfg, name, v); err != nil {
				logx.Warnf("%v", err)
			}
		}
	}
}

func setScalar(cfg *config.Config, name, value string) {
	if err := config.SetOption(cfg, name, value); err != nil {
		logx.Warnf("%v", err)
	}
}

// resolveThreads turns the configured thread count into a concrete
// worker-pool size: 0 means "number of cores + 1", per config.go's
// Default/Table comment for --threads.
func resolveThreads(configured int32) int {
	if configured > 0 {
		return int(configured)
	}
	return runtime.NumCPU() + 1
}

// openOutput opens cfg.OutputPath for writing, or returns stdout for
// "-" or an empty path, per spec.md §6: "-o<path> (default graph.dot;
// - or missing ⇒ stdout)".
func openOutput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errorsx.Fatal("main.openOutput", err, "cannot open output %q", path)
	}
	return f, func() { f.Close() }, nil
}
