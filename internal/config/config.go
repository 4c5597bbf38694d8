// Package config implements spec.md §6's configuration surface: a typed
// Config struct, an option table shared between the config-file grammar
// and the CLI flags built on top of it in cmd/lxgraph, and the file
// grammar itself (newline-delimited name = value / name = [ v1 v2 ],
// '#' comments, C-style escapes in quoted values).
//
// Structured the way the teacher's internal/config.Load layers config
// sources (defaults, then file, then explicit overrides), but the
// grammar is hand-written: util.h/util.c define a small name = value
// format that predates and differs from the teacher's KDL format, and
// no retrieved library parses it.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/summaryInfo/lxgraph/internal/logx"
)

// LOD is the graph's level of detail: function-granularity (the
// default) or file-granularity after condensation.
type LOD int32

const (
	LODFunction LOD = iota
	LODFile
)

func (l LOD) String() string {
	if l == LODFile {
		return "file"
	}
	return "function"
}

// ProgName names the default config file (lxgraph.conf) and is reused
// by cmd/lxgraph for its --version banner.
const ProgName = "lxgraph"

// Config mirrors struct config in util.h field-for-field, renamed to Go
// conventions.
type Config struct {
	ConfigPath string
	OutputPath string
	BuildDir   string
	LogLevel   int32
	LOD        LOD
	NThreads   int32

	ExcludeFiles          []string
	ExcludeFunctions      []string
	RootFiles             []string
	RootFunctions         []string
	ReverseRootFiles      []string
	ReverseRootFunctions  []string

	KeepInline bool
	KeepStatic bool
}

// Default returns a Config populated with the same built-in defaults
// set_option(..., "default") would produce for every scalar option
// except config, whose path is left empty here.
func Default() *Config {
	return &Config{
		OutputPath: "graph.dot",
		BuildDir:   ".",
		LogLevel:   3,
		LOD:        LODFunction,
		NThreads:   0, // 0 means "number of cores + 1", resolved by the caller.
		KeepInline: true,
		KeepStatic: true,
	}
}

// kind distinguishes how an option's value is parsed and applied.
type kind int

const (
	kindInt kind = iota
	kindBool
	kindEnum
	kindString
	kindArray
)

// option is one row of the table enum option in util.h maps onto:
// a config-file key / long CLI flag name, an optional short-flag
// letter, how its value parses, and how it's applied to a Config.
type option struct {
	name  string
	short byte // 0 if none
	kind  kind
	usage string

	// apply handles scalar kinds (int/bool/enum/string).
	apply func(c *Config, value string) error
	// arrayField handles kindArray, returning the slice field to
	// clear or append to.
	arrayField func(c *Config) *[]string
}

// Table is the shared option table: the config-file parser resolves
// keys through it, and cmd/lxgraph routes its scalar flag values
// through it via SetOption. cmd/lxgraph's urfave/cli flags themselves
// are listed by hand under the same names, not generated from Table.
var Table = []option{
	{
		name: "log-level", short: 'L', kind: kindInt,
		usage: ", -L<value>\t(Verbosity of output, 0-4)",
		apply: func(c *Config, v string) error {
			n, err := parseInt(v, 0, 4, 3)
			if err != nil {
				return err
			}
			c.LogLevel = n
			return nil
		},
	},
	{
		name: "inline", kind: kindBool,
		usage: "\t(Keep inline functions)",
		apply: func(c *Config, v string) error {
			b, err := parseBool(v, true)
			if err != nil {
				return err
			}
			c.KeepInline = b
			return nil
		},
	},
	{
		name: "static", kind: kindBool,
		usage: "\t(Keep static functions; no filter stage reads this option, so it does not change the graph)",
		apply: func(c *Config, v string) error {
			b, err := parseBool(v, true)
			if err != nil {
				return err
			}
			c.KeepStatic = b
			return nil
		},
	},
	{
		name: "lod", kind: kindEnum,
		usage: "\t\t(Set level of details, [function]/file)",
		apply: func(c *Config, v string) error {
			if strings.EqualFold(v, "default") {
				c.LOD = LODFunction
				return nil
			}
			switch {
			case strings.EqualFold(v, "function"):
				c.LOD = LODFunction
			case strings.EqualFold(v, "file"):
				c.LOD = LODFile
			default:
				return fmt.Errorf("lod must be %q or %q, got %q", "function", "file", v)
			}
			return nil
		},
	},
	{
		name: "config", short: 'C', kind: kindString,
		usage: ", -C<value>\t(Configuration file path)",
		apply: func(c *Config, v string) error {
			c.ConfigPath = parseStr(v, ProgName+".conf")
			return nil
		},
	},
	{
		name: "out", short: 'o', kind: kindString,
		usage: ", -o<value>\t(Output file path)",
		apply: func(c *Config, v string) error {
			c.OutputPath = parseStr(v, "graph.dot")
			return nil
		},
	},
	{
		name: "path", short: 'p', kind: kindString,
		usage: ", -p<value>\t(Build directory path)",
		apply: func(c *Config, v string) error {
			c.BuildDir = parseStr(v, ".")
			return nil
		},
	},
	{
		name: "threads", short: 'T', kind: kindInt,
		usage: ", -T<value>\t(Number of threads to use, default is number of cores + 1)",
		apply: func(c *Config, v string) error {
			n, err := parseInt(v, 1, 32, 0)
			if err != nil {
				return err
			}
			c.NThreads = n
			return nil
		},
	},
	{
		name: "exclude-files", kind: kindArray,
		usage:      "\t\t(List of files to exclude from the graph)",
		arrayField: func(c *Config) *[]string { return &c.ExcludeFiles },
	},
	{
		name: "exclude-functions", kind: kindArray,
		usage:      "\t\t(List of functions to exclude from the graph)",
		arrayField: func(c *Config) *[]string { return &c.ExcludeFunctions },
	},
	{
		name: "root-files", kind: kindArray,
		usage:      "\t\t(List of files to mark as roots of the graph)",
		arrayField: func(c *Config) *[]string { return &c.RootFiles },
	},
	{
		name: "root-functions", kind: kindArray,
		usage:      "\t\t(List of functions to mark as roots of the graph)",
		arrayField: func(c *Config) *[]string { return &c.RootFunctions },
	},
	{
		name: "reverse-root-files", kind: kindArray,
		usage:      "\t\t(List of files whose callers are reverse-reachability roots)",
		arrayField: func(c *Config) *[]string { return &c.ReverseRootFiles },
	},
	{
		name: "reverse-root-functions", kind: kindArray,
		usage:      "\t\t(List of functions whose callers are reverse-reachability roots)",
		arrayField: func(c *Config) *[]string { return &c.ReverseRootFunctions },
	},
}

func findOption(name string) (*option, bool) {
	for i := range Table {
		if Table[i].name == name {
			return &Table[i], true
		}
	}
	return nil, false
}

// SetOption resolves name through Table and applies value to c. For
// array options a value of "" clears the array; otherwise it appends.
// Mirrors set_option in util.c, split into two explicit entry points
// instead of one function with static state, since Go has no
// equivalent of a function-local static across calls.
func SetOption(c *Config, name, value string) error {
	opt, ok := findOption(name)
	if !ok {
		return fmt.Errorf("unknown option %q", name)
	}
	if opt.kind == kindArray {
		return AppendArray(c, name, value)
	}
	if err := opt.apply(c, value); err != nil {
		return fmt.Errorf("option %q: %w", name, err)
	}
	return nil
}

// AppendArray appends value to the named array option, or clears it if
// value is empty.
func AppendArray(c *Config, name, value string) error {
	opt, ok := findOption(name)
	if !ok || opt.kind != kindArray {
		return fmt.Errorf("%q is not an array option", name)
	}
	field := opt.arrayField(c)
	if value == "" {
		*field = nil
		return nil
	}
	*field = append(*field, value)
	return nil
}

// ApplyDefaults sets every scalar option to its built-in default, the
// way init_config does before a config file is even located.
func ApplyDefaults(c *Config) {
	for i := range Table {
		if Table[i].kind == kindArray || Table[i].name == "config" {
			continue
		}
		if err := Table[i].apply(c, "default"); err != nil {
			logx.Warnf("unexpected error applying default for %q: %v", Table[i].name, err)
		}
	}
}

// UsageLines renders the per-option help text usage_string built up
// one call at a time.
func UsageLines() []string {
	lines := make([]string, 0, len(Table)+2)
	lines = append(lines, "\t--help, -h\t\t\t(Print this message and exit)")
	lines = append(lines, "\t-Q\t\t\t\t(Set log level to 0)")
	for _, opt := range Table {
		// opt.usage already carries the ", -x<value>" short form.
		lines = append(lines, fmt.Sprintf("\t--%s=<value>%s", opt.name, opt.usage))
	}
	lines = append(lines,
		"For every boolean option <X> in the config file,",
		"\t<X> = yes, <X> = y, <X> = true",
		"are equivalent to <X> = 1, and",
		"\t<X> = no, <X> = n, <X> = false",
		"are equivalent to <X> = 0,",
		"where 'yes', 'y', 'true', 'no', 'n' and 'false' are case independent.",
		"All non-array options in the config file also accept special value 'default' to reset to built-in default.",
		"On the command line, boolean flags take --<X> or --<X>=true/false/1/0;",
		"--no-<X>, yes/y/no/n, and 'default' for boolean and integer flags are not accepted there.",
		"Array options accept one value at a time and append to the current value.",
		"Specify empty value string to clear the array option.")
	return lines
}

func parseBool(str string, dflt bool) (bool, error) {
	switch strings.ToLower(str) {
	case "default":
		return dflt, nil
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", str)
}

func parseInt(str string, min, max, dflt int32) (int32, error) {
	if strings.EqualFold(str, "default") {
		return dflt, nil
	}
	n, err := strconv.ParseInt(str, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", str)
	}
	v := int32(n)
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v, nil
}

func parseStr(str, dflt string) string {
	if strings.EqualFold(str, "default") {
		return dflt
	}
	return str
}
