package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"defense-planner/internal/formation"
	"defense-planner/internal/logger"
	"defense-planner/internal/schema"
	"defense-planner/internal/spatial"
)

func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	b, err := NewFileBackend(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	_, err = b.Get(ctx, "missing.json")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Put(ctx, "formations.json", []byte(`[]`)))
	require.NoError(t, b.Put(ctx, "formations.json", []byte(`[1]`)))
	data, err := b.Get(ctx, "formations.json")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(data))

	entries, err := os.ReadDir(b.dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestNewBackend(t *testing.T) {
	b, err := New(Config{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)

	_, err = New(Config{Backend: "tape"})
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = New(Config{Backend: KindMinIO})
	assert.Error(t, err, "bucket required")
}

func newFormations(t *testing.T, b Backend) (*Collection[formation.Formation], *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewCollection[formation.Formation](b, "formations.json", schema.MustBuiltin("formation"), logger.NewWithCore(core))
	return c, logs
}

func TestCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	b, _ := NewFileBackend(t.TempDir())
	c, _ := newFormations(t, b)

	in := []formation.Formation{{
		Name:    "Angriff über Position 4",
		Ball:    spatial.Pt(30, 120),
		Offsets: []spatial.Point{spatial.Pt(10, 300)},
		Zones:   []formation.Zone{{PlayerIndex: 0, Rect: spatial.R(1, 2, 3, 4)}},
	}}
	require.NoError(t, c.Save(ctx, in))

	raw, _ := b.Get(ctx, "formations.json")
	assert.Contains(t, string(raw), "Angriff über Position 4", "non-ASCII stays readable")
	assert.Contains(t, string(raw), "\n  {", "indented")

	out, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCollectionRecovery(t *testing.T) {
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		b, _ := NewFileBackend(t.TempDir())
		c, _ := newFormations(t, b)
		out, err := c.Load(ctx)
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("syntax error", func(t *testing.T) {
		b, _ := NewFileBackend(t.TempDir())
		require.NoError(t, b.Put(ctx, "formations.json", []byte(`[{"name":`)))
		c, logs := newFormations(t, b)

		out, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	})

	t.Run("bad records skipped", func(t *testing.T) {
		b, _ := NewFileBackend(t.TempDir())
		require.NoError(t, b.Put(ctx, "formations.json", []byte(`[
			{"name":"ok","ball":[1,2],"offsets":[[3,4]]},
			{"name":"no ball","offsets":[]},
			{"name":"ok2","ball":[5,6],"offsets":[],"zones":[]}
		]`)))
		c, logs := newFormations(t, b)

		out, err := c.Load(ctx)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "ok", out[0].Name)
		assert.Empty(t, out[0].Zones)
		assert.Equal(t, "ok2", out[1].Name)

		warns := logs.FilterMessage("skipping invalid record").All()
		require.Len(t, warns, 1)
		assert.Equal(t, int64(1), warns[0].ContextMap()["index"])
	})
}

func TestMinIOBackendLive(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	if endpoint == "" || accessKey == "" || secretKey == "" {
		t.Skip("Skipping test: MinIO credentials not provided")
	}

	b, err := NewMinIOBackend(MinIOConfig{
		Endpoint:        endpoint,
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		Bucket:          "defense-planner-test",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := fmt.Sprintf("test-%d.json", time.Now().UnixNano())
	require.NoError(t, b.Put(ctx, key, []byte(`[]`)))
	data, err := b.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	_, err = b.Get(ctx, "does-not-exist.json")
	assert.ErrorIs(t, err, ErrNotFound)
}
