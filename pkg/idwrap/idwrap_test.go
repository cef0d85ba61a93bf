package idwrap_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-dev-tools/ordering/pkg/idwrap"
)

func TestIDWrap_RoundTrip(t *testing.T) {
	id := idwrap.NewNow()
	require.Len(t, id.String(), 26)

	parsed, err := idwrap.NewText(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.WithinDuration(t, time.Now(), parsed.Time(), time.Minute)
}

func TestIDWrap_Sortable(t *testing.T) {
	first := idwrap.NewNow()
	time.Sleep(2 * time.Millisecond)
	second := idwrap.NewNow()
	assert.Less(t, first.String(), second.String())
}

func TestIDWrap_Invalid(t *testing.T) {
	_, err := idwrap.NewText("not-a-ulid")
	assert.Error(t, err)
	_, err = idwrap.NewText("record-1")
	assert.Error(t, err)
}
