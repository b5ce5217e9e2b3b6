package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/gorilla/mux"

	"defense-planner/internal/board"
	"defense-planner/internal/eventbus"
	"defense-planner/internal/formation"
	"defense-planner/internal/logger"
	"defense-planner/internal/schema"
	"defense-planner/internal/sector"
	"defense-planner/internal/team"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, formation.ErrIndexOutOfRange),
		errors.Is(err, team.ErrIndexOutOfRange),
		errors.Is(err, board.ErrPlayerIndex):
		return http.StatusNotFound
	case errors.Is(err, formation.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, formation.ErrPersist), errors.Is(err, team.ErrPersist):
		return http.StatusInternalServerError
	case errors.Is(err, errBadRequest),
		errors.Is(err, schema.ErrInvalid),
		errors.Is(err, formation.ErrInvalidRecord),
		errors.Is(err, team.ErrInvalidRecord),
		errors.Is(err, sector.ErrInvalidParams),
		errors.Is(err, sector.ErrUnknownPreset):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeCollection answers a GET with an xxhash ETag and honors
// If-None-Match.
func writeCollection(w http.ResponseWriter, r *http.Request, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}
	return data, nil
}

func decodeBody(r *http.Request, v interface{}) error {
	data, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

func indexVar(r *http.Request) (int, error) {
	i, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		return -1, fmt.Errorf("%w: index: %v", errBadRequest, err)
	}
	return i, nil
}

// decodeFormation checks the record's shape before decoding it.
func (s *Service) decodeFormation(r *http.Request) (formation.Formation, error) {
	data, err := readBody(r)
	if err != nil {
		return formation.Formation{}, err
	}
	if err := s.formationSchema.ValidateBytes(data); err != nil {
		return formation.Formation{}, err
	}
	var f formation.Formation
	if err := json.Unmarshal(data, &f); err != nil {
		return formation.Formation{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return f, nil
}

func (s *Service) decodeZone(r *http.Request) (formation.Zone, error) {
	data, err := readBody(r)
	if err != nil {
		return formation.Zone{}, err
	}
	if err := s.zoneSchema.ValidateBytes(data); err != nil {
		return formation.Zone{}, err
	}
	var z formation.Zone
	if err := json.Unmarshal(data, &z); err != nil {
		return formation.Zone{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return z, nil
}

func (s *Service) decodeTeam(r *http.Request) (team.Team, error) {
	data, err := readBody(r)
	if err != nil {
		return team.Team{}, err
	}
	if err := s.teamSchema.ValidateBytes(data); err != nil {
		return team.Team{}, err
	}
	var t team.Team
	if err := json.Unmarshal(data, &t); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return t, nil
}

// Formations

func (s *Service) ListFormationsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := s.formations.List()
	s.mu.Unlock()
	writeCollection(w, r, list)
}

func (s *Service) AddFormationHandler(w http.ResponseWriter, r *http.Request) {
	f, err := s.decodeFormation(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	i, err := s.formations.Add(r.Context(), f)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"index": i})
}

// SaveFormationHandler is the legacy append endpoint of the web planner.
func (s *Service) SaveFormationHandler(w http.ResponseWriter, r *http.Request) {
	f, err := s.decodeFormation(r)
	if err != nil {
		s.log.Debug("legacy save rejected", logger.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid data"})
		return
	}

	s.mu.Lock()
	_, err = s.formations.Add(r.Context(), f)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) UpdateFormationHandler(w http.ResponseWriter, r *http.Request) {
	i, err := indexVar(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.decodeFormation(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	err = s.formations.Update(r.Context(), i, f)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) DeleteFormationHandler(w http.ResponseWriter, r *http.Request) {
	i, err := indexVar(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	err = s.formations.Delete(r.Context(), i)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) RenameFormationHandler(w http.ResponseWriter, r *http.Request) {
	i, err := indexVar(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	err = s.formations.Rename(r.Context(), i, req.Name)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) AddZoneHandler(w http.ResponseWriter, r *http.Request) {
	i, err := indexVar(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	z, err := s.decodeZone(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	err = s.formations.AddZone(r.Context(), i, z)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) DeleteZoneHandler(w http.ResponseWriter, r *http.Request) {
	i, err := indexVar(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	z, err := s.decodeZone(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	deleted, err := s.formations.DeleteZone(r.Context(), i, z)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// Teams

func (s *Service) ListTeamsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list := s.teams.List()
	s.mu.Unlock()
	writeCollection(w, r, list)
}

func (s *Service) AddTeamHandler(w http.ResponseWriter, r *http.Request) {
	t, err := s.decodeTeam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	i, err := s.teams.Add(r.Context(), t)
	if i >= 0 {
		s.publish(eventbus.TypeTeam+"added", SubjectTeams, map[string]interface{}{"index": i, "name": t.Name})
	}
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"index": i})
}

func (s *Service) UpdateTeamHandler(w http.ResponseWriter, r *http.Request) {
	i, err := indexVar(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.decodeTeam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	err = s.teams.Update(r.Context(), i, t)
	if err == nil || errors.Is(err, team.ErrPersist) {
		s.publish(eventbus.TypeTeam+"updated", SubjectTeams, map[string]interface{}{"index": i, "name": t.Name})
	}
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) DeleteTeamHandler(w http.ResponseWriter, r *http.Request) {
	i, err := indexVar(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	err = s.teams.Delete(r.Context(), i)
	if err == nil || errors.Is(err, team.ErrPersist) {
		s.publish(eventbus.TypeTeam+"deleted", SubjectTeams, map[string]interface{}{"index": i})
	}
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
