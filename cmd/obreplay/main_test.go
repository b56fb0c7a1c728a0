package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commands = `{"seq_id":1,"type":51,"payload":{"order_id":"s1","instrument":"VOD.L","side":2,"price":"3.00","quantity":"5"}}
{"seq_id":2,"type":51,"payload":{"order_id":"s2","instrument":"VOD.L","side":2,"price":"4.00","quantity":"5"}}
{"seq_id":3,"type":51,"payload":{"order_id":"b1","instrument":"VOD.L","side":1,"price":"2.50","quantity":"10"}}
{"seq_id":4,"type":51,"payload":{"order_id":"s1","instrument":"VOD.L","side":2,"price":"3.00","quantity":"5"}}
not json

{"seq_id":5,"type":52,"payload":{"order_id":"s2","new_quantity":"8"}}
{"seq_id":6,"type":53,"payload":{"order_id":"s1"}}
{"seq_id":7,"type":51,"payload":{"order_id":"x1","instrument":"BARC.L","side":1,"price":"1.01","quantity":"1"}}
`

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(commands), 0o600))

	cfg := Default()
	cfg.Input = path
	cfg.TickSize = "0.01"

	var out bytes.Buffer
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	require.NoError(t, run(cfg, log, &out))

	var reports []instrumentReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &reports))
	require.Len(t, reports, 2)

	assert.Equal(t, "BARC.L", reports[0].Instrument)
	assert.Equal(t, "1.01", reports[0].Bid.Best)
	assert.Empty(t, reports[0].Ask.Levels)

	vod := reports[1]
	assert.Equal(t, "VOD.L", vod.Instrument)
	assert.Equal(t, "4", vod.Ask.Best)
	require.Len(t, vod.Ask.Levels, 1)
	assert.Equal(t, int64(400), vod.Ask.Levels[0].Price)
	assert.Equal(t, int64(8), vod.Ask.Levels[0].Quantity)
	assert.Equal(t, "2.5", vod.Bid.Best)
}

func TestRunInvalidConfig(t *testing.T) {
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))

	cfg := Default()
	cfg.TickSize = "0"
	assert.Error(t, run(cfg, log, io.Discard))

	cfg = Default()
	cfg.Input = filepath.Join(t.TempDir(), "missing.jsonl")
	assert.Error(t, run(cfg, log, io.Discard))
}

func TestLoadFromEnv(t *testing.T) {
	env := filepath.Join(t.TempDir(), ".env")
	content := strings.Join([]string{
		"OBREPLAY_TICK_SIZE=0.5",
		"OBREPLAY_DEPTH=3",
		"OBREPLAY_LOG_LEVEL=debug",
	}, "\n")
	require.NoError(t, os.WriteFile(env, []byte(content), 0o600))

	t.Setenv("OBREPLAY_INPUT", "orders.jsonl")
	// godotenv never overrides variables that are already set
	t.Setenv("OBREPLAY_DEPTH", "7")

	unsetAfter(t, "OBREPLAY_TICK_SIZE", "OBREPLAY_LOG_LEVEL")
	cfg := LoadFromEnv(env)
	assert.Equal(t, "orders.jsonl", cfg.Input)
	assert.Equal(t, "0.5", cfg.TickSize)
	assert.Equal(t, uint32(7), cfg.Depth)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "1", cfg.LotSize)
}

// unsetAfter removes variables that godotenv set for the whole process.
func unsetAfter(t *testing.T, keys ...string) {
	t.Cleanup(func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	})
}

func TestParseConfig(t *testing.T) {
	env := filepath.Join(t.TempDir(), "custom.env")
	content := strings.Join([]string{
		"OBREPLAY_TICK_SIZE=0.01",
		"OBREPLAY_LOT_SIZE=10",
		"OBREPLAY_DEPTH=3",
	}, "\n")
	require.NoError(t, os.WriteFile(env, []byte(content), 0o600))
	unsetAfter(t, "OBREPLAY_TICK_SIZE", "OBREPLAY_LOT_SIZE", "OBREPLAY_DEPTH")

	fs := flag.NewFlagSet("obreplay", flag.ContinueOnError)
	cfg, err := parseConfig(fs, []string{"-env", env, "-input", "in.jsonl"})
	require.NoError(t, err)
	assert.Equal(t, "in.jsonl", cfg.Input)
	assert.Equal(t, "0.01", cfg.TickSize)
	assert.Equal(t, "10", cfg.LotSize)
	assert.Equal(t, uint32(3), cfg.Depth)

	fs = flag.NewFlagSet("obreplay", flag.ContinueOnError)
	cfg, err = parseConfig(fs, []string{"-env", env, "-tick", "0.5", "-depth", "8"})
	require.NoError(t, err)
	assert.Equal(t, "-", cfg.Input)
	assert.Equal(t, "0.5", cfg.TickSize)
	assert.Equal(t, "10", cfg.LotSize)
	assert.Equal(t, uint32(8), cfg.Depth)
}

func TestParseConfigDepthRange(t *testing.T) {
	for _, v := range []string{"4294967296", "0"} {
		fs := flag.NewFlagSet("obreplay", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		_, err := parseConfig(fs, []string{"-depth", v})
		assert.Error(t, err, v)
	}
}
