package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m), l)
		out = append(out, m)
	}
	return out
}

func TestEvents(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "debug")
	t.Cleanup(func() { SetOutput(io.Discard, "error") })

	Audit("ledger.record", map[string]any{"movement_id": 7})
	Warn("ledger.record.fail", errors.New("insufficient stock"), nil)

	got := lines(t, &buf)
	require.Len(t, got, 2)

	assert.Equal(t, "info", got[0]["level"])
	assert.Equal(t, "audit", got[0]["kind"])
	assert.Equal(t, "ledger.record", got[0]["action"])
	assert.Equal(t, map[string]any{"movement_id": float64(7)}, got[0]["fields"])

	assert.Equal(t, "warn", got[1]["level"])
	assert.Equal(t, "insufficient stock", got[1]["error"])
	assert.NotContains(t, got[1], "fields")
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")
	t.Cleanup(func() { SetOutput(io.Discard, "error") })

	Debug("noise", nil)
	Info("noise", nil)
	Error("store.open.fail", errors.New("disk"), map[string]any{"path": "x.db"})

	got := lines(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "store.open.fail", got[0]["action"])
}
