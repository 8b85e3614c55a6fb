package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tablewatch/internal/config"
	"github.com/aretw0/tablewatch/internal/testutils"
	"github.com/aretw0/tablewatch/pkg/adapters/file"
	"github.com/aretw0/tablewatch/pkg/adapters/memory"
	"github.com/aretw0/tablewatch/pkg/adapters/redis"
	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/aretw0/tablewatch/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.ManifestPath = testutils.WriteManifest(t, `[{"name":"a","source_table":"t1"}]`, 0)
	cfg.LocationName = "my_location"
	cfg.Cursor.Backend = config.BackendFile
	cfg.Cursor.Dir = filepath.Join(t.TempDir(), "cursors")
	return cfg
}

type recordingReloader struct {
	mu        sync.Mutex
	locations []string
}

func (r *recordingReloader) Reload(ctx context.Context, location string) domain.ReloadOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations = append(r.locations, location)
	return domain.ReloadOutcome{Kind: domain.OutcomeSuccess}
}

func (r *recordingReloader) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.locations...)
}

func TestOpenStore(t *testing.T) {
	store, locker, closer, err := OpenStore(config.CursorConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
	assert.Nil(t, locker)
	assert.Nil(t, closer)

	store, _, _, err = OpenStore(config.CursorConfig{Backend: config.BackendFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, store)

	mr := miniredis.RunT(t)
	store, locker, closer, err = OpenStore(config.CursorConfig{
		Backend:   config.BackendRedis,
		RedisAddr: mr.Addr(),
		Prefix:    "test:",
	})
	require.NoError(t, err)
	assert.IsType(t, &redis.Store{}, store)
	assert.NotNil(t, locker)
	require.NotNil(t, closer)
	defer closer.Close()

	ports.RunCursorStoreContract(t, store)

	_, _, _, err = OpenStore(config.CursorConfig{Backend: "s3"})
	assert.Error(t, err)
}

func TestNewApp_Tick(t *testing.T) {
	cfg := testConfig(t)
	reloader := &recordingReloader{}

	app, err := NewApp(cfg, nil, reloader)
	require.NoError(t, err)
	defer app.Close()

	ctx := context.Background()
	eval, err := app.Scheduler.TickNow(ctx)
	require.NoError(t, err)
	assert.True(t, eval.Reloaded)
	assert.Equal(t, []string{"my_location"}, reloader.calls())

	cursor, err := app.Store.Load(ctx, cfg.SensorName)
	require.NoError(t, err)
	assert.NotEmpty(t, cursor)

	_, err = app.Scheduler.TickNow(ctx)
	require.NoError(t, err)
	assert.Len(t, reloader.calls(), 1)
}

func TestNewApp_RedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Cursor.Backend = config.BackendRedis
	cfg.Cursor.RedisAddr = mr.Addr()

	app, err := NewApp(cfg, nil, &recordingReloader{})
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Scheduler.TickNow(context.Background())
	require.NoError(t, err)
	assert.True(t, mr.Exists(cfg.Cursor.Prefix+cfg.SensorName))
}

func TestNewApp_ManifestError(t *testing.T) {
	cfg := testConfig(t)
	cfg.ManifestPath = filepath.Join(t.TempDir(), "missing.json")

	_, err := NewApp(cfg, nil, &recordingReloader{})
	var me *domain.ManifestError
	assert.ErrorAs(t, err, &me)
}

func TestRunService(t *testing.T) {
	cfg := testConfig(t)
	reloader := &recordingReloader{}
	app, err := NewApp(cfg, nil, reloader)
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- RunService(ctx, app, ServeOptions{
			ListenAddr: "127.0.0.1:0",
			Out:        out,
			Ready:      func(addr string) { ready <- addr },
		})
	}()

	var addr string
	select {
	case addr = <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("service did not start")
	}

	require.Eventually(t, func() bool { return len(reloader.calls()) == 1 }, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/status")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var status struct {
			Ticks int64 `json:"ticks"`
		}
		return json.NewDecoder(resp.Body).Decode(&status) == nil && status.Ticks >= 1
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("[json_file_reload_sensor] reloaded at"))
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestRunService_ListenError(t *testing.T) {
	app, err := NewApp(testConfig(t), nil, &recordingReloader{})
	require.NoError(t, err)
	defer app.Close()

	err = RunService(context.Background(), app, ServeOptions{ListenAddr: "127.0.0.1:99999"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	cfg.LogFormat = "json"

	var buf bytes.Buffer
	logger, err := NewLogger(&buf, cfg, true)
	require.NoError(t, err)
	logger.Debug("hello", "error", "boom")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "boom", line["err"])
}

func TestNewApp_Namespace(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cursor.Backend = config.BackendMemory
	cfg.Cursor.Namespace = "staging"

	app, err := NewApp(cfg, nil, &recordingReloader{})
	require.NoError(t, err)
	defer app.Close()

	ctx := context.Background()
	_, err = app.Scheduler.TickNow(ctx)
	require.NoError(t, err)

	keys, err := app.Store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{cfg.SensorName}, keys)
}
