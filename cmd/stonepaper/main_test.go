package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/stonepaper/internal/history"
	"github.com/lox/stonepaper/internal/store"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// testGlobals writes a config that keeps every file inside a temp dir
func testGlobals(t *testing.T, driver string) (*Globals, string) {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "history."+driver)
	configPath := filepath.Join(dir, "stonepaper.hcl")
	content := fmt.Sprintf(`
storage {
  driver = %q
  path   = %q
}

log {
  file = %q
}
`, driver, dataPath, filepath.Join(dir, "stonepaper.log"))
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return &Globals{Config: configPath}, dataPath
}

func TestHistoryCommand(t *testing.T) {
	t.Parallel()

	for _, driver := range []string{store.DriverFile, store.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			g, dataPath := testGlobals(t, driver)
			var out bytes.Buffer

			cmd := &HistoryCmd{out: &out}
			require.NoError(t, cmd.Run(g))
			assert.Equal(t, "No games played yet.\n", out.String())

			st, err := store.Open(driver, dataPath)
			require.NoError(t, err)
			repo := history.NewStoreRepository(st, "", testLogger())
			_, err = repo.Append(context.Background(), history.Record{UserWins: 2, ComputerWins: 1})
			require.NoError(t, err)
			require.NoError(t, st.Close())

			out.Reset()
			require.NoError(t, cmd.Run(g))
			assert.Contains(t, out.String(), "User: 2, Computer: 1")

			out.Reset()
			require.NoError(t, (&HistoryCmd{Clear: true, out: &out}).Run(g))
			assert.Equal(t, "History cleared.\n", out.String())

			out.Reset()
			require.NoError(t, cmd.Run(g))
			assert.Equal(t, "No games played yet.\n", out.String())
		})
	}
}

func TestSimulateCommand(t *testing.T) {
	t.Parallel()

	g, _ := testGlobals(t, store.DriverMemory)
	var out bytes.Buffer
	cmd := &SimulateCmd{Sessions: 20, Rounds: 3, Seed: 99, Workers: 2, out: &out}
	require.NoError(t, cmd.Run(g))

	assert.Contains(t, out.String(), "Sessions played: 20 (60 rounds)")
	assert.Contains(t, out.String(), "Seed: 99")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`game { rounds = -1 }`), 0o644))

	err := (&HistoryCmd{}).Run(&Globals{Config: path})
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestCLIParses(t *testing.T) {
	t.Parallel()

	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": version}, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"play", "--rounds", "5", "--mode", "timed", "--ephemeral", "--no-color"})
	require.NoError(t, err)
	assert.Equal(t, 5, cli.Play.Rounds)
	assert.Equal(t, "timed", cli.Play.Mode)
	assert.True(t, cli.Play.Ephemeral)
	assert.True(t, cli.Play.NoColor)

	_, err = parser.Parse([]string{"--debug", "simulate", "-n", "50", "--workers", "4"})
	require.NoError(t, err)
	assert.True(t, cli.Debug)
	assert.Equal(t, 50, cli.Simulate.Sessions)
	assert.Equal(t, 4, cli.Simulate.Workers)

	_, err = parser.Parse([]string{"history", "--clear"})
	require.NoError(t, err)
	assert.True(t, cli.History.Clear)

	_, err = parser.Parse([]string{"serve", "--addr", "0.0.0.0:9000"})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cli.Serve.Addr)
}
