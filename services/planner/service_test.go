package planner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defense-planner/internal/board"
	"defense-planner/internal/config"
	"defense-planner/internal/court"
	"defense-planner/internal/eventbus"
	"defense-planner/internal/formation"
	"defense-planner/internal/interpolation"
	"defense-planner/internal/logger"
	"defense-planner/internal/schema"
	"defense-planner/internal/sector"
	"defense-planner/internal/storage"
	"defense-planner/internal/team"
)

type recordingBus struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (b *recordingBus) Publish(_ context.Context, e eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	return nil
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.EventType
	}
	return out
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, error) { return nil, storage.ErrNotFound }
func (failingBackend) Put(context.Context, string, []byte) error   { return errors.New("disk full") }

type fixture struct {
	svc *Service
	bus *recordingBus
	dir string
}

func newFixture(t *testing.T, backend storage.Backend, opts formation.Options) *fixture {
	t.Helper()
	dir := t.TempDir()
	if backend == nil {
		fb, err := storage.NewFileBackend(dir)
		require.NoError(t, err)
		backend = fb
	}

	cfg := config.Default()
	log := logger.NewNop()
	repos := Repositories{
		Formations: storage.NewCollection[formation.Formation](backend, cfg.Storage.FormationsKey, schema.MustBuiltin("formation"), log),
		Teams:      storage.NewCollection[team.Team](backend, cfg.Storage.TeamsKey, schema.MustBuiltin("team"), log),
	}
	formations := formation.NewStore(repos.Formations, opts)
	teams := team.NewStore(repos.Teams)

	presets, err := cfg.SectorPresets()
	require.NoError(t, err)
	b := board.New(board.Settings{
		Court:        cfg.CourtModel(),
		BallRadius:   cfg.Ball.Radius,
		PlayerRadius: cfg.Players.Radius,
		SnapRadius:   cfg.SnapRadius,
		Presets:      presets,
		Shadow:       cfg.ShadowParams(),
	}, formations, interpolation.NewEngine(cfg.Mode(), cfg.Interpolation.NearestCount),
		cfg.BallStart(), cfg.PlayerStarts(), cfg.PlayerNames())

	bus := &recordingBus{}
	svc := NewService(Config{HTTPAddr: "127.0.0.1:0"}, formations, teams, b, repos, bus, log)
	return &fixture{svc: svc, bus: bus, dir: dir}
}

func (f *fixture) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.svc.httpServer.Handler().ServeHTTP(rec, req)
	return rec
}

const baseFormation = `{
	"name": "Base",
	"ball": [135, 135],
	"offsets": [[0, 300], [-60, 300], [60, 300], [0, 330], [-60, 330], [60, 330]]
}`

func decodeFrame(t *testing.T, rec *httptest.ResponseRecorder) board.Frame {
	t.Helper()
	var f board.Frame
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	return f
}

func TestFormationCRUD(t *testing.T) {
	fx := newFixture(t, nil, formation.Options{})

	rec := fx.do(t, http.MethodPost, "/api/formations", baseFormation)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"index":0}`, rec.Body.String())

	rec = fx.do(t, http.MethodGet, "/api/formations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []formation.Formation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Base", list[0].Name)
	assert.Empty(t, list[0].Zones)

	rec = fx.do(t, http.MethodPut, "/api/formations/0/name", `{"name":"Middle"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	zone := `{"player_index":0,"rect":[100,300,40,40],"color":[0,120,255,80]}`
	rec = fx.do(t, http.MethodPost, "/api/formations/0/zones", zone)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = fx.do(t, http.MethodDelete, "/api/formations/0/zones", `{"player_index":0,"rect":[1,2,3,4],"color":[0,0,0,0]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":false}`, rec.Body.String())

	rec = fx.do(t, http.MethodDelete, "/api/formations/0/zones", zone)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":true}`, rec.Body.String())

	data, err := os.ReadFile(filepath.Join(fx.dir, "defense_positions.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Middle"`)

	rec = fx.do(t, http.MethodDelete, "/api/formations/0", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, fx.svc.formations.Len())

	assert.Equal(t, []string{
		"formation.added", "formation.renamed", "formation.zone_added",
		"formation.zone_deleted", "formation.deleted",
	}, fx.bus.types())
}

func TestFormationErrors(t *testing.T) {
	fx := newFixture(t, nil, formation.Options{UniqueNames: true})
	require.Equal(t, http.StatusCreated, fx.do(t, http.MethodPost, "/api/formations", baseFormation).Code)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing ball", http.MethodPost, "/api/formations", `{"name":"x","offsets":[]}`, http.StatusBadRequest},
		{"not json", http.MethodPost, "/api/formations", `{`, http.StatusBadRequest},
		{"blank name", http.MethodPost, "/api/formations", `{"name":"  ","ball":[1,1],"offsets":[]}`, http.StatusBadRequest},
		{"duplicate", http.MethodPost, "/api/formations", baseFormation, http.StatusConflict},
		{"update out of range", http.MethodPut, "/api/formations/3", baseFormation, http.StatusNotFound},
		{"delete out of range", http.MethodDelete, "/api/formations/7", "", http.StatusNotFound},
		{"rename empty", http.MethodPut, "/api/formations/0/name", `{"name":""}`, http.StatusBadRequest},
		{"zone for missing player", http.MethodPost, "/api/formations/0/zones",
			`{"player_index":9,"rect":[0,0,1,1],"color":[0,0,0]}`, http.StatusBadRequest},
		{"empty zone", http.MethodPost, "/api/formations/0/zones", `{}`, http.StatusBadRequest},
		{"null zone", http.MethodPost, "/api/formations/0/zones", `null`, http.StatusBadRequest},
		{"zone without color", http.MethodPost, "/api/formations/0/zones", `{"player_index":0,"rect":[0,0,1,1]}`, http.StatusBadRequest},
		{"delete empty zone", http.MethodDelete, "/api/formations/0/zones", `{}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := fx.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
	assert.Equal(t, 1, fx.svc.formations.Len())
}

func TestCollectionETag(t *testing.T) {
	fx := newFixture(t, nil, formation.Options{})
	require.Equal(t, http.StatusCreated, fx.do(t, http.MethodPost, "/api/formations", baseFormation).Code)

	first := fx.do(t, http.MethodGet, "/api/formations", "")
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec := fx.do(t, http.MethodGet, "/api/formations", "", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	require.Equal(t, http.StatusNoContent, fx.do(t, http.MethodPut, "/api/formations/0/name", `{"name":"Other"}`).Code)
	rec = fx.do(t, http.MethodGet, "/api/formations", "", "If-None-Match", etag)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, etag, rec.Header().Get("ETag"))
}

func TestLegacySaveFormation(t *testing.T) {
	fx := newFixture(t, nil, formation.Options{})

	rec := fx.do(t, http.MethodPost, "/api/save_formation", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid data"}`, rec.Body.String())

	rec = fx.do(t, http.MethodPost, "/api/save_formation", baseFormation)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, 1, fx.svc.formations.Len())
}

func TestPersistFailure(t *testing.T) {
	fx := newFixture(t, failingBackend{}, formation.Options{})

	rec := fx.do(t, http.MethodPost, "/api/formations", baseFormation)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "disk full")
	assert.Equal(t, 1, fx.svc.formations.Len(), "mutation is kept in memory")

	rec = fx.do(t, http.MethodPost, "/api/teams", `{"name":"A","player_names":["a"]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTeams(t *testing.T) {
	fx := newFixture(t, nil, formation.Options{})

	rec := fx.do(t, http.MethodPost, "/api/teams", `{"name":"Home","player_names":["Ann","Bea","Cat","Dot","Eve","Fay"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = fx.do(t, http.MethodPost, "/api/teams", `{"player_names":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = fx.do(t, http.MethodPut, "/api/teams/0", `{"name":"Home","player_names":["Zed"]}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = fx.do(t, http.MethodGet, "/api/teams", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"name":"Home","player_names":["Zed"]}]`, rec.Body.String())

	rec = fx.do(t, http.MethodPost, "/api/board/team/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	frame := decodeFrame(t, rec)
	assert.Equal(t, "Zed", frame.Players[0].Name)
	assert.Equal(t, "D2", frame.Players[1].Name)

	assert.Equal(t, http.StatusNotFound, fx.do(t, http.MethodPost, "/api/board/team/4", "").Code)
	assert.Equal(t, http.StatusNotFound, fx.do(t, http.MethodDelete, "/api/teams/4", "").Code)
	assert.Equal(t, http.StatusNoContent, fx.do(t, http.MethodDelete, "/api/teams/0", "").Code)

	assert.Equal(t, []string{"team.added", "team.updated", "team.deleted"}, fx.bus.types())
}

func TestBoardRoutes(t *testing.T) {
	fx := newFixture(t, nil, formation.Options{})
	require.Equal(t, http.StatusCreated, fx.do(t, http.MethodPost, "/api/formations", baseFormation).Code)

	t.Run("ball snaps onto a stored formation", func(t *testing.T) {
		rec := fx.do(t, http.MethodPost, "/api/board/ball", `{"x":138,"y":133}`)
		require.Equal(t, http.StatusOK, rec.Code)
		frame := decodeFrame(t, rec)
		require.NotNil(t, frame.Snapped)
		assert.Equal(t, 0, *frame.Snapped)
		assert.Equal(t, 135.0, frame.Ball.X)
		assert.Equal(t, 435.0, frame.Players[0].Center.Y)
	})

	t.Run("ball is clamped to the attacking half", func(t *testing.T) {
		rec := fx.do(t, http.MethodPost, "/api/board/ball", `{"x":-50,"y":900}`)
		require.Equal(t, http.StatusOK, rec.Code)
		frame := decodeFrame(t, rec)
		assert.Equal(t, 8.0, frame.Ball.X)
		assert.Equal(t, 262.0, frame.Ball.Y)
	})

	t.Run("ball needs both coordinates", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, fx.do(t, http.MethodPost, "/api/board/ball", `{"x":1}`).Code)
	})

	t.Run("player move", func(t *testing.T) {
		rec := fx.do(t, http.MethodPost, "/api/board/players/2", `{"x":100,"y":400}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 100.0, decodeFrame(t, rec).Players[2].Center.X)
		assert.Equal(t, http.StatusNotFound, fx.do(t, http.MethodPost, "/api/board/players/6", `{"x":1,"y":1}`).Code)
	})

	t.Run("sector params", func(t *testing.T) {
		rec := fx.do(t, http.MethodPut, "/api/board/players/0/sectors/wide", `{"max_radius_meters":3,"angle_width":200}`)
		require.Equal(t, http.StatusOK, rec.Code)
		frame := decodeFrame(t, rec)
		for _, arc := range frame.Players[0].Sectors {
			if arc.Preset == sector.Backward {
				assert.InDelta(t, 160.0, arc.SweepAngle, 1e-9)
			}
		}
		assert.Equal(t, http.StatusBadRequest,
			fx.do(t, http.MethodPut, "/api/board/players/0/sectors/wide", `{"max_radius_meters":3,"angle_width":0}`).Code)
		assert.Equal(t, http.StatusBadRequest,
			fx.do(t, http.MethodPut, "/api/board/players/0/sectors/sideways", `{"max_radius_meters":3,"angle_width":20}`).Code)
	})

	t.Run("live zones", func(t *testing.T) {
		rec := fx.do(t, http.MethodPost, "/api/board/zones", `{"player_index":1,"rect":[0,270,270,270],"color":[0,0,255]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		frame := decodeFrame(t, rec)
		assert.Len(t, frame.Zones, 1)
		assert.True(t, frame.Players[1].InZone)

		rec = fx.do(t, http.MethodDelete, "/api/board/zones", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeFrame(t, rec).Zones)

		for _, body := range []string{`{}`, `null`} {
			rec = fx.do(t, http.MethodPost, "/api/board/zones", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		}
		assert.Empty(t, fx.svc.board.Frame().Zones)
	})

	t.Run("recall", func(t *testing.T) {
		rec := fx.do(t, http.MethodPost, "/api/board/recall/0", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 135.0, decodeFrame(t, rec).Ball.Y)
		assert.Equal(t, http.StatusNotFound, fx.do(t, http.MethodPost, "/api/board/recall/1", "").Code)
	})

	t.Run("capture", func(t *testing.T) {
		fx.do(t, http.MethodPost, "/api/board/ball", `{"x":60,"y":60}`)
		rec := fx.do(t, http.MethodPost, "/api/board/capture", "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp struct {
			Index int `json:"index"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Index)

		f, err := fx.svc.formations.Get(1)
		require.NoError(t, err)
		assert.Equal(t, "Ball (2.0m/2.0m)", f.Name)

		rec = fx.do(t, http.MethodPost, "/api/board/capture", `{"name":"Named"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		f, err = fx.svc.formations.Get(2)
		require.NoError(t, err)
		assert.Equal(t, "Named", f.Name)
	})

	t.Run("frame and mesh", func(t *testing.T) {
		rec := fx.do(t, http.MethodGet, "/api/board", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeFrame(t, rec).Markers, 3)

		rec = fx.do(t, http.MethodGet, "/api/board/mesh", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var parts []board.MeshPart
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parts))
		assert.NotEmpty(t, parts)

		rec = fx.do(t, http.MethodGet, "/api/board/court", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var layout court.Layout
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &layout))
		assert.Equal(t, 180.0, layout.AttackLineY)
		assert.Equal(t, 360.0, layout.DefenseLineY)
	})
}

func TestStartLoadsStoredCollections(t *testing.T) {
	fx := newFixture(t, nil, formation.Options{})
	require.NoError(t, os.WriteFile(filepath.Join(fx.dir, "defense_positions.json"),
		[]byte(`[`+baseFormation+`, {"name": 5}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(fx.dir, "teams.json"),
		[]byte(`[{"name":"Home","player_names":["Ann"]},{"name":"Away"}]`), 0o644))

	require.NoError(t, fx.svc.Start(context.Background()))
	t.Cleanup(fx.svc.Stop)

	assert.Equal(t, 1, fx.svc.formations.Len(), "invalid record skipped")
	assert.Equal(t, 2, fx.svc.teams.Len())
	assert.Equal(t, "Ann", fx.svc.board.Frame().Players[0].Name)
}

func TestHandleBoardMessage(t *testing.T) {
	fx := newFixture(t, nil, formation.Options{})

	assert.NoError(t, fx.svc.HandleBoardMessage([]byte(`{"type":"ball","x":50,"y":50}`)))
	assert.NoError(t, fx.svc.HandleBoardMessage([]byte(`{"type":"player","index":3,"x":50,"y":400}`)))

	err := fx.svc.HandleBoardMessage([]byte(`{"type":"player","index":12,"x":50,"y":400}`))
	assert.ErrorIs(t, err, board.ErrPlayerIndex)
	assert.Error(t, fx.svc.HandleBoardMessage([]byte(`{"type":"spin","x":1,"y":1}`)))
	assert.Error(t, fx.svc.HandleBoardMessage([]byte(`{"type":"ball"}`)))
	assert.Error(t, fx.svc.HandleBoardMessage([]byte(`nope`)))
}

func TestWebSocketBroadcast(t *testing.T) {
	fx := newFixture(t, nil, formation.Options{})
	require.NoError(t, fx.svc.Start(context.Background()))

	srv := httptest.NewServer(fx.svc.httpServer.Handler())
	t.Cleanup(func() {
		srv.Close()
		fx.svc.Stop()
	})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/board"
	dial := func() *websocket.Conn {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}
	read := func(conn *websocket.Conn) map[string]json.RawMessage {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg map[string]json.RawMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	sender, watcher := dial(), dial()
	assert.JSONEq(t, `"frame"`, string(read(sender)["type"]))
	assert.JSONEq(t, `"frame"`, string(read(watcher)["type"]))
	require.Eventually(t, func() bool { return fx.svc.wsServer.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, sender.WriteJSON(map[string]interface{}{"type": "ball", "x": 70, "y": 90}))
	msg := read(watcher)
	var frame board.Frame
	require.NoError(t, json.Unmarshal(msg["frame"], &frame))
	assert.Equal(t, 70.0, frame.Ball.X)
	assert.Equal(t, 90.0, frame.Ball.Y)

	require.NoError(t, sender.WriteJSON(map[string]interface{}{"type": "kick", "x": 1, "y": 1}))
	for {
		msg = read(sender)
		if string(msg["type"]) == `"error"` {
			break
		}
	}
	assert.Contains(t, string(msg["error"]), "unknown message type")
}
