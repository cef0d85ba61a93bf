package cli_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-dev-tools/ordering/internal/cli"
	"github.com/the-dev-tools/ordering/pkg/movable"
	"github.com/the-dev-tools/ordering/pkg/snapshot"
)

// setupConfig writes a config pointing at a fresh sqlite file.
func setupConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ordering.yaml")
	content := fmt.Sprintf("store:\n  driver: sqlite\n  sqlite_path: %s\nlog:\n  level: error\n",
		filepath.Join(dir, "ordering.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func listIDs(t *testing.T, cfgPath, scope string) []string {
	t.Helper()
	out, err := run(t, cfgPath, "item", "list", "--scope", scope, "--json")
	require.NoError(t, err)
	var items []movable.OrderedItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestVersion(t *testing.T) {
	cmd := cli.NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "ordering dev\n", out.String())
}

func TestItemsAndMoves(t *testing.T) {
	cfg := setupConfig(t)

	for _, id := range []string{"a", "b", "c"} {
		out, err := run(t, cfg, "item", "add", "--scope", "board", "--id", id, "--name", "Card "+id)
		require.NoError(t, err)
		assert.Contains(t, out, "added "+id)
	}
	assert.Equal(t, []string{"a", "b", "c"}, listIDs(t, cfg, "board"))

	out, err := run(t, cfg, "move", "--scope", "board", "--id", "c", "--position", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "moved c to position 1")
	assert.Equal(t, []string{"c", "a", "b"}, listIDs(t, cfg, "board"))

	_, err = run(t, cfg, "move", "--scope", "board", "--id", "c", "--after", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, listIDs(t, cfg, "board"))

	_, err = run(t, cfg, "move", "--scope", "board", "--id", "a", "--before", "a")
	assert.ErrorIs(t, err, movable.ErrSelfReference)

	_, err = run(t, cfg, "move", "--scope", "board", "--id", "a", "--position", "2", "--after", "b")
	assert.Error(t, err, "destination flags are mutually exclusive")

	_, err = run(t, cfg, "item", "remove", "--scope", "board", "--id", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, listIDs(t, cfg, "board"))

	out, err = run(t, cfg, "item", "list", "--scope", "board")
	require.NoError(t, err)
	assert.Contains(t, out, "POS")
	assert.Contains(t, out, "Card a")
}

func TestItemAddGeneratesID(t *testing.T) {
	cfg := setupConfig(t)

	_, err := run(t, cfg, "item", "add", "--scope", "board")
	require.NoError(t, err)
	ids := listIDs(t, cfg, "board")
	require.Len(t, ids, 1)
	assert.Len(t, ids[0], 26, "generated ids are ULIDs")
}

func TestItemShow(t *testing.T) {
	cfg := setupConfig(t)

	_, err := run(t, cfg, "item", "add", "--scope", "board", "--id", "a", "--name", "Card a")
	require.NoError(t, err)
	_, err = run(t, cfg, "item", "add", "--scope", "board")
	require.NoError(t, err)
	ids := listIDs(t, cfg, "board")
	require.Len(t, ids, 2)

	out, err := run(t, cfg, "item", "show", "--scope", "board", "--id", "a")
	require.NoError(t, err)
	assert.Contains(t, out, "Card a")
	assert.Contains(t, out, "1000")
	assert.NotContains(t, out, "CREATED", "hand-picked ids carry no creation time")

	out, err = run(t, cfg, "item", "show", "--scope", "board", "--id", ids[1], "--json")
	require.NoError(t, err)
	var shown struct {
		ID      string     `json:"id"`
		Order   *float64   `json:"order"`
		Created *time.Time `json:"created"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, ids[1], shown.ID)
	require.NotNil(t, shown.Order)
	assert.Equal(t, 2000.0, *shown.Order)
	require.NotNil(t, shown.Created)
	assert.WithinDuration(t, time.Now(), *shown.Created, time.Minute)

	_, err = run(t, cfg, "item", "show", "--scope", "board", "--id", "ghost")
	assert.ErrorIs(t, err, movable.ErrItemNotFound)
}

func TestMaintenanceCommands(t *testing.T) {
	cfg := setupConfig(t)
	for _, id := range []string{"a", "b"} {
		_, err := run(t, cfg, "item", "add", "--scope", "board", "--id", id)
		require.NoError(t, err)
	}

	out, err := run(t, cfg, "rebalance", "--scope", "board")
	require.NoError(t, err)
	assert.Contains(t, out, "does not need rebalancing")

	out, err = run(t, cfg, "rebalance", "--scope", "board", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "no changes", "already evenly spaced")

	out, err = run(t, cfg, "backfill", "--scope", "board")
	require.NoError(t, err)
	assert.Contains(t, out, "no changes")

	out, err = run(t, cfg, "check", "--all", "--json")
	require.NoError(t, err)
	var reports []movable.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "board", reports[0].Scope)
	assert.Equal(t, 2, reports[0].Metrics.Ordered)
	assert.False(t, reports[0].NeedsRebalancing)

	out, err = run(t, cfg, "check", "--scope", "board")
	require.NoError(t, err)
	assert.Contains(t, out, "SCOPE")
}

func TestMetricsTextfile(t *testing.T) {
	cfg := setupConfig(t)
	metricsPath := filepath.Join(t.TempDir(), "ordering.prom")

	_, err := run(t, cfg, "item", "add", "--scope", "board", "--id", "a")
	require.NoError(t, err)
	_, err = run(t, cfg, "item", "add", "--scope", "board", "--id", "b")
	require.NoError(t, err)
	_, err = run(t, cfg, "--metrics-textfile", metricsPath, "move", "--scope", "board", "--id", "b", "--position", "1")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ordering_moves_total{scope="board"} 1`)
}

func TestPlan(t *testing.T) {
	cfg := setupConfig(t)
	file := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, snapshot.Write(file, snapshot.Snapshot{
		Scope: "board",
		Items: []movable.OrderedItem{
			movable.OrderedItem{ID: "a", Name: "A"}.WithOrder(1000),
			movable.OrderedItem{ID: "b", Name: "B"}.WithOrder(1000.00015),
			movable.OrderedItem{ID: "c", Name: "C"}.WithOrder(5000),
		},
	}))

	out, err := run(t, cfg, "plan", "move", "--file", file, "--id", "c", "--position", "2", "--json")
	require.NoError(t, err)
	var result movable.MoveResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Rebalanced)
	assert.Equal(t, movable.OrderMap{"c": 2000, "b": 3000}, result.Updates)

	unchanged, err := snapshot.Read(file)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, *unchanged.Items[2].Order, "plan without --write leaves the file alone")

	_, err = run(t, cfg, "plan", "rebalance", "--file", file, "--force", "--write")
	require.NoError(t, err)
	written, err := snapshot.Read(file)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, *written.Items[0].Order)
	assert.Equal(t, 2000.0, *written.Items[1].Order)
	assert.Equal(t, 3000.0, *written.Items[2].Order)

	out, err = run(t, cfg, "plan", "backfill", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "no changes")
}
