package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/summaryInfo/lxgraph/internal/config"
)

func TestResolveThreadsDefaultsToCoresPlusOne(t *testing.T) {
	require.Greater(t, resolveThreads(0), 1)
	require.EqualValues(t, 4, resolveThreads(4))
}

func TestBuildAppRegistersShortAliases(t *testing.T) {
	app := buildApp()
	names := map[string]bool{}
	for _, f := range app.Flags {
		for _, n := range f.Names() {
			names[n] = true
		}
	}
	for _, want := range []string{"C", "o", "p", "T", "L", "Q"} {
		require.True(t, names[want], "missing short alias %q", want)
	}
}

func TestOpenOutputDefaultsToStdout(t *testing.T) {
	f, closeFn, err := openOutput("-")
	require.NoError(t, err)
	defer closeFn()
	require.Equal(t, "/dev/stdout", f.Name())

	f2, closeFn2, err := openOutput("")
	require.NoError(t, err)
	defer closeFn2()
	require.Equal(t, "/dev/stdout", f2.Name())
}

func TestSetScalarRoutesThroughSharedOptionTable(t *testing.T) {
	cfg := config.Default()
	config.ApplyDefaults(cfg)

	setScalar(cfg, "threads", "999")
	require.EqualValues(t, 32, cfg.NThreads, "expected the same clamping SetOption gives a config-file value")

	setScalar(cfg, "lod", "file")
	require.Equal(t, config.LODFile, cfg.LOD)
}
