package planner

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"defense-planner/internal/board"
	"defense-planner/internal/sector"
	"defense-planner/internal/spatial"
)

type position struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (p position) point() (spatial.Point, error) {
	if p.X == nil || p.Y == nil {
		return spatial.Point{}, fmt.Errorf("%w: x and y are required", errBadRequest)
	}
	return spatial.Pt(*p.X, *p.Y), nil
}

// BoardMessage is an inbound websocket message.
type BoardMessage struct {
	Type  string `json:"type"` // "ball" or "player"
	Index int    `json:"index"`
	position
}

// HandleBoardMessage applies a drag from a websocket client. The resulting
// frame goes to every client.
func (s *Service) HandleBoardMessage(message []byte) error {
	var msg BoardMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	p, err := msg.point()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case "ball":
		s.queueFrame(s.board.MoveBall(p))
	case "player":
		f, err := s.board.MovePlayer(msg.Index, p)
		if err != nil {
			return err
		}
		s.queueFrame(f)
	default:
		return fmt.Errorf("%w: unknown message type %q", errBadRequest, msg.Type)
	}
	return nil
}

// respondFrame answers with f and fans it out to websocket clients. Callers
// hold s.mu.
func (s *Service) respondFrame(w http.ResponseWriter, f board.Frame) {
	s.queueFrame(f)
	writeJSON(w, http.StatusOK, f)
}

func (s *Service) GetBoardHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	f := s.board.Frame()
	s.mu.Unlock()
	writeCollection(w, r, f)
}

func (s *Service) GetCourtHandler(w http.ResponseWriter, r *http.Request) {
	writeCollection(w, r, s.board.Court())
}

func (s *Service) GetMeshHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	parts, err := s.board.Meshes(s.cfg.MeshSegments)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeCollection(w, r, parts)
}

func (s *Service) MoveBallHandler(w http.ResponseWriter, r *http.Request) {
	var req position
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := req.point()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.respondFrame(w, s.board.MoveBall(p))
}

func (s *Service) MovePlayerHandler(w http.ResponseWriter, r *http.Request) {
	i, err := indexVar(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req position
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := req.point()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.board.MovePlayer(i, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondFrame(w, f)
}

func (s *Service) SetSectorHandler(w http.ResponseWriter, r *http.Request) {
	i, err := indexVar(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var params sector.Params
	if err := decodeBody(r, &params); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.board.SetSectorParams(i, mux.Vars(r)["preset"], params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondFrame(w, f)
}

func (s *Service) AddLiveZoneHandler(w http.ResponseWriter, r *http.Request) {
	z, err := s.decodeZone(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.board.AddZone(z)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondFrame(w, f)
}

func (s *Service) ClearLiveZonesHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respondFrame(w, s.board.ClearZones())
}

func (s *Service) RecallHandler(w http.ResponseWriter, r *http.Request) {
	i, err := indexVar(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.board.Recall(i)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondFrame(w, f)
}

// CaptureHandler stores the live board. The body is optional; without a
// name one is derived from the ball position.
func (s *Service) CaptureHandler(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.board.Capture(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"index": i, "frame": s.board.Frame()})
}

func (s *Service) ApplyTeamHandler(w http.ResponseWriter, r *http.Request) {
	i, err := indexVar(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.teams.Get(i)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondFrame(w, s.board.ApplyTeam(t.PlayerNames))
}
