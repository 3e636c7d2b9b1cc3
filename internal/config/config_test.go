package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trknhr/ghostguess/internal/match"
	"github.com/trknhr/ghostguess/internal/pattern"
	"github.com/trknhr/ghostguess/internal/search"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Model.Orders)
	assert.Equal(t, "encoding", cfg.Model.Source)
	assert.Equal(t, pattern.DefaultConfig(), cfg.PatternConfig())
	assert.Equal(t, 0.9, cfg.Search.FastSmoothing)
	assert.Equal(t, 0.7, cfg.Search.SlowSmoothing)
	assert.Equal(t, 1, cfg.Threads())
	assert.Equal(t, 100, cfg.Search.BatchSize)
	assert.Equal(t, 50*time.Millisecond, cfg.Search.IdleTimeout)
	assert.Equal(t, search.ModeBestFirst, cfg.SearchMode())
	assert.Equal(t, "INFO", cfg.Log.Level)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ghostguess.yaml")
	content := "model:\n  orders: 3\n  source: corpus\n  path: rockyou.txt\nsearch:\n  threads: 4\n  batch_size: 50\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("GHOSTGUESS_SEARCH_BATCH_SIZE", "25")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Model.Orders)
	assert.Equal(t, 4, cfg.Threads())
	assert.Equal(t, 25, cfg.Search.BatchSize)
	assert.Equal(t, search.ModeParallel, cfg.SearchMode())

	src, err := cfg.Source()
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, pattern.Source{Kind: pattern.SourceCorpus, Path: filepath.Join(wd, "rockyou.txt")}, src)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"zero orders", "model.orders", 0},
		{"unknown source", "model.source", "carrier-pigeon"},
		{"unknown mode", "search.mode", "sideways"},
		{"negative length", "search.max_len", -1},
		{"negative branch base", "model.branch_base", -120},
		{"cutoff mass above range", "model.cutoff_mass", 1.5},
		{"cutoff mass of one", "model.cutoff_mass", 1.0},
		{"negative cutoff mass", "model.cutoff_mass", -0.1},
		{"no significant orders", "model.significant_orders", 0},
		{"min order past orders", "model.min_order", 5},
		{"negative idle timeout", "search.idle_timeout", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Set(tt.key, tt.val)
			_, err := Load(v, "")
			assert.Error(t, err)
		})
	}

	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestConfig_Threads(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, runtime.NumCPU(), cfg.Threads())
}

func TestConfig_SearchOptions(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	plain, err := match.Parse("hunter2")
	require.NoError(t, err)
	opts, err := cfg.SearchOptions(plain)
	require.NoError(t, err)
	assert.Equal(t, 7, opts.MaxLen)
	assert.Equal(t, search.ModeBestFirst, opts.Mode)
	assert.True(t, opts.Matcher.Match("hunter2"))

	hashed, err := match.Parse("sha1:f3bbbd66a63d4bf1747940578ec3d0103530e21d")
	require.NoError(t, err)
	_, err = cfg.SearchOptions(hashed)
	assert.Error(t, err)

	cfg.Search.MaxLen = 7
	cfg.Search.Mode = "routed"
	opts, err = cfg.SearchOptions(hashed)
	require.NoError(t, err)
	assert.Equal(t, 7, opts.MaxLen)
	assert.Equal(t, search.ModeRouted, opts.Mode)
}
