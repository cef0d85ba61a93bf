package snapshot_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-dev-tools/ordering/pkg/movable"
	"github.com/the-dev-tools/ordering/pkg/snapshot"
)

func sample() snapshot.Snapshot {
	return snapshot.Snapshot{
		Scope: "board-1",
		Items: []movable.OrderedItem{
			movable.OrderedItem{ID: "a", Name: "Alpha"}.WithOrder(1000),
			{ID: "b", Name: "Beta"},
			movable.OrderedItem{ID: "c"}.WithOrder(1500.25),
		},
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    snapshot.Format
		wantErr bool
	}{
		{path: "items.json", want: snapshot.FormatJSON},
		{path: "dir/items.YAML", want: snapshot.FormatYAML},
		{path: "items.yml", want: snapshot.FormatYAML},
		{path: "items.toml", wantErr: true},
		{path: "items", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := snapshot.FormatFromPath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, snapshot.ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadWrite(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"snap.json", "snap.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, snapshot.Write(path, sample()))

			got, err := snapshot.Read(path)
			require.NoError(t, err)
			assert.Equal(t, sample(), got)
		})
	}
}

func TestDecode_YAML(t *testing.T) {
	doc := `
scope: tasks
items:
  - id: t1
    name: Write docs
    order: 2000
  - id: t2
    name: Ship
`
	snap, err := snapshot.Decode(strings.NewReader(doc), snapshot.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "tasks", snap.Scope)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, 2000.0, *snap.Items[0].Order)
	assert.Nil(t, snap.Items[1].Order)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		format snapshot.Format
		doc    string
		target error
	}{
		{
			name:   "duplicate id",
			format: snapshot.FormatJSON,
			doc:    `{"items":[{"id":"a"},{"id":"a"}]}`,
			target: movable.ErrDuplicateID,
		},
		{
			name:   "empty id",
			format: snapshot.FormatYAML,
			doc:    "items:\n  - name: nameless\n",
			target: movable.ErrEmptyItemID,
		},
		{
			name:   "unknown format",
			format: "toml",
			doc:    "",
			target: snapshot.ErrUnknownFormat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := snapshot.Decode(strings.NewReader(tt.doc), tt.format)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	_, err := snapshot.Decode(strings.NewReader(`{"items":[],"extra":1}`), snapshot.FormatJSON)
	assert.Error(t, err, "unknown fields are rejected")
}

func TestEncode_EmptyItems(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, snapshot.Encode(&buf, snapshot.FormatJSON, snapshot.Snapshot{}))
	assert.JSONEq(t, `{"items":[]}`, buf.String())
}
