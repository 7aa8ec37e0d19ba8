package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-mquic/config"
	"github.com/dep2p/go-mquic/internal/core/demuxer"
)

func TestCommonFlags_OverrideOnlyExplicit(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Stream.FrameSizeMin = 1200
	cfg.Stream.FrameSizeMax = 1500
	data, err := cfg.ToJSON()
	require.NoError(t, err)
	path := filepath.Join(dir, "mquic.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	require.NoError(t, fs.Parse([]string{"-config", path, "-frame-max", "1800", "-pacing", "0s"}))

	loaded, err := common.load(fs)
	require.NoError(t, err)
	assert.Equal(t, 1200, loaded.Stream.FrameSizeMin)
	assert.Equal(t, 1800, loaded.Stream.FrameSizeMax)
	assert.Equal(t, time.Duration(0), loaded.Stream.Pacing.Duration())
}

func TestCommonFlags_Invalid(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	require.NoError(t, fs.Parse([]string{"-max-datagram", "500", "-frame-min", "1000", "-frame-max", "1000"}))

	_, err := common.load(fs)
	assert.Error(t, err)
}

func TestReadPayloads_Copies(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("aaa"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0o600))

	payloads, err := readPayloads([]string{a, b}, 2)
	require.NoError(t, err)
	require.Len(t, payloads, 4)
	assert.Equal(t, "aaa", string(payloads[1]))
	assert.Equal(t, "b", string(payloads[3]))

	_, err = readPayloads([]string{filepath.Join(dir, "missing")}, 1)
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	a := generate(512, 9, true)
	b := generate(512, 9, true)
	assert.Equal(t, a, b)
	for _, c := range a {
		assert.Contains(t, genAlphabet, string(c))
	}
	assert.Len(t, generate(0, 1, false), 0)
}

func TestWriteStreams(t *testing.T) {
	dir := t.TempDir()
	streams := []demuxer.StreamPayload{
		{ID: 1, Data: []byte("one"), Complete: true},
		{ID: 3, Data: []byte("three")},
	}
	require.NoError(t, writeStreams(dir, 2, streams))

	got, err := os.ReadFile(filepath.Join(dir, "round-2", "stream-3.bin"))
	require.NoError(t, err)
	assert.Equal(t, "three", string(got))
}

func TestRun_UnknownCommand(t *testing.T) {
	assert.Error(t, run([]string{"bogus"}))
	assert.ErrorIs(t, run(nil), flag.ErrHelp)
	assert.NoError(t, run([]string{"version"}))
}
