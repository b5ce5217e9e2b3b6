// Package planner serves the formation and team collections and the live
// planning board over HTTP and websocket.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"defense-planner/internal/board"
	"defense-planner/internal/eventbus"
	"defense-planner/internal/formation"
	"defense-planner/internal/logger"
	"defense-planner/internal/schema"
	"defense-planner/internal/storage"
	"defense-planner/internal/team"
)

// Subjects used as event keys.
const (
	SubjectFormations = "formations"
	SubjectTeams      = "teams"
)

type Config struct {
	HTTPAddr string
	// MeshSegments is the arc resolution used by the mesh endpoint.
	MeshSegments int
}

// Repositories are the stored collections the service loads at startup.
type Repositories struct {
	Formations *storage.Collection[formation.Formation]
	Teams      *storage.Collection[team.Team]
}

type Service struct {
	// mu serializes every access to the board and both stores.
	mu sync.Mutex

	formations *formation.Store
	teams      *team.Store
	board      *board.Board
	repos      Repositories

	formationSchema *schema.Validator
	zoneSchema      *schema.Validator
	teamSchema      *schema.Validator

	bus        eventbus.Publisher
	httpServer *HTTPServer
	wsServer   *WebSocketServer
	broadcast  chan []byte
	closed     bool

	log logger.Log
	cfg Config
}

func NewService(cfg Config, formations *formation.Store, teams *team.Store, b *board.Board, repos Repositories, bus eventbus.Publisher, log logger.Log) *Service {
	if cfg.MeshSegments <= 0 {
		cfg.MeshSegments = 32
	}
	log = log.With(logger.String("service", "planner"))

	s := &Service{
		formations:      formations,
		teams:           teams,
		board:           b,
		repos:           repos,
		formationSchema: schema.MustBuiltin("formation"),
		zoneSchema:      schema.MustBuiltin("zone"),
		teamSchema:      schema.MustBuiltin("team"),
		bus:             bus,
		httpServer:      NewHTTPServer(cfg.HTTPAddr, log),
		broadcast:       make(chan []byte, 100),
		log:             log,
		cfg:             cfg,
	}
	s.wsServer = NewWebSocketServer(s.HandleBoardMessage, s.snapshot, log.With(logger.String("component", "websocket")))
	s.httpServer.RegisterRoutes(s, s.wsServer)
	formations.Subscribe(s.onFormationChange)
	return s
}

// Start loads the stored collections and starts fanning frames out to
// websocket clients. It does not start listening; see Serve.
func (s *Service) Start(ctx context.Context) error {
	if err := s.loadInitialData(ctx); err != nil {
		return err
	}
	go s.wsServer.BroadcastLoop(s.broadcast)
	s.log.Info("planner service initialized",
		logger.Int("formations", s.formations.Len()),
		logger.Int("teams", s.teams.Len()))
	return nil
}

// Serve blocks until Stop is called.
func (s *Service) Serve() error {
	return s.httpServer.ListenAndServe()
}

func (s *Service) Stop() {
	s.httpServer.Stop()
	s.log.Info("stopping planner service", logger.Int("clients", s.wsServer.Clients()))
	s.wsServer.CloseAll()

	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.broadcast)
	}
	s.mu.Unlock()

	if err := s.bus.Close(); err != nil {
		s.log.Error("failed to close event bus", logger.Error(err))
	}
}

func (s *Service) loadInitialData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repos.Formations != nil {
		fs, err := s.repos.Formations.Load(ctx)
		if err != nil {
			return fmt.Errorf("load formations: %w", err)
		}
		s.formations.Replace(fs)
	}
	if s.repos.Teams != nil {
		ts, err := s.repos.Teams.Load(ctx)
		if err != nil {
			return fmt.Errorf("load teams: %w", err)
		}
		s.teams.Replace(ts)
		if len(ts) > 0 {
			s.board.ApplyTeam(ts[0].PlayerNames)
		}
	}
	return nil
}

// onFormationChange runs with s.mu held: store mutations only happen inside
// handlers.
func (s *Service) onFormationChange(c formation.Change) {
	payload := map[string]interface{}{"index": c.Index}
	if c.Op != formation.OpReplaced {
		payload["name"] = c.Formation.Name
	}
	s.publish(eventbus.TypeFormation+string(c.Op), SubjectFormations, payload)
	s.pushFrame()
}

func (s *Service) publish(eventType, subject string, payload map[string]interface{}) {
	event := eventbus.NewEvent(eventType, subject, payload)
	if err := s.bus.Publish(context.Background(), event); err != nil {
		s.log.Warn("failed to publish event",
			logger.String("event_type", eventType),
			logger.Error(err))
	}
}

type frameMessage struct {
	Type  string      `json:"type"`
	Frame board.Frame `json:"frame"`
}

func encodeFrame(f board.Frame) ([]byte, error) {
	return json.Marshal(frameMessage{Type: "frame", Frame: f})
}

// pushFrame queues the current frame for every websocket client. Callers
// hold s.mu. A full queue drops the frame; the next one supersedes it.
func (s *Service) pushFrame() {
	s.queueFrame(s.board.Frame())
}

func (s *Service) queueFrame(f board.Frame) {
	if s.closed {
		return
	}
	msg, err := encodeFrame(f)
	if err != nil {
		s.log.Error("failed to encode frame", logger.Error(err))
		return
	}
	select {
	case s.broadcast <- msg:
	default:
		s.log.Warn("broadcast queue full, dropping frame")
	}
}

func (s *Service) snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return encodeFrame(s.board.Frame())
}
