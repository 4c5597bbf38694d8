package config

import (
	"os"
	"path/filepath"

	"github.com/summaryInfo/lxgraph/internal/logx"
)

func warnSyntaxError(e *syntaxError) {
	logx.Warnf("config: %s", e.Error())
}

func warnOptionError(key string, err error) {
	logx.Warnf("config: %v", err)
}

// Load resolves the config file per spec.md §6's three-step search
// order — (1) the --config path if one was given, (2) <build-dir>/
// lxgraph.conf, (3) <cwd>/lxgraph.conf — reads the first one that
// exists, and applies it on top of c. A missing file at every location
// is not an error: the run proceeds with whatever defaults and CLI
// flags already populated c, matching the original's "config file not
// found, continue with defaults" disposition.
//
// c's scalar fields should already hold their built-in defaults (see
// ApplyDefaults) and buildDir/explicitPath should reflect any
// already-parsed --path/--config flags, since path resolution must see
// those before the file search runs — init_config in util.c parses
// --config eagerly for the same reason.
func Load(c *Config, explicitPath, buildDir string) {
	candidates := make([]string, 0, 3)
	if explicitPath != "" {
		candidates = append(candidates, explicitPath)
	}
	if buildDir != "" {
		candidates = append(candidates, filepath.Join(buildDir, ProgName+".conf"))
	}
	candidates = append(candidates, ProgName+".conf")

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		logx.Debugf("config: picked config file %q", path)
		Parse(c, data)
		return
	}
	logx.Debugf("config: cannot find config file anywhere")
}
