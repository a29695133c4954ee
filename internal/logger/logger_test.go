package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtx_AttachesAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json")

	ctx := Ctx(context.Background(), slog.String("run_id", "abc"))
	ctx = Ctx(ctx, slog.String("feed", "https://example.com/rss"))
	l.InfoContext(ctx, "fetched feed")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "fetched feed", rec["msg"])
	assert.Equal(t, "abc", rec["run_id"])
	assert.Equal(t, "https://example.com/rss", rec["feed"])
}

func TestCtx_SiblingsDoNotShareAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "json")

	parent := Ctx(context.Background(), slog.String("run_id", "abc"))
	_ = Ctx(parent, slog.String("feed", "a"))
	l.InfoContext(parent, "parent only")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotContains(t, rec, "feed")
}
