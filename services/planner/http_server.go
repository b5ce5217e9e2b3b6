package planner

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"defense-planner/internal/logger"
)

type HTTPServer struct {
	server *http.Server
	router *mux.Router
	log    logger.Log
}

func NewHTTPServer(addr string, log logger.Log) *HTTPServer {
	router := mux.NewRouter()

	srv := &http.Server{
		Addr:         addr,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	return &HTTPServer{
		server: srv,
		router: router,
		log:    log.With(logger.String("addr", addr)),
	}
}

// Handler exposes the router, mainly for httptest.
func (hs *HTTPServer) Handler() http.Handler { return hs.router }

// ListenAndServe blocks until the server stops. A graceful shutdown is not
// an error.
func (hs *HTTPServer) ListenAndServe() error {
	hs.log.Info("HTTP server starting")
	if err := hs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (hs *HTTPServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := hs.server.Shutdown(ctx); err != nil {
		hs.log.Error("HTTP server shutdown error", logger.Error(err))
	}
	hs.log.Info("HTTP server stopped")
}

func (hs *HTTPServer) RegisterRoutes(service *Service, wsServer *WebSocketServer) {
	hs.router.HandleFunc("/ws/board", wsServer.HandleWebSocket)

	api := hs.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/formations", service.ListFormationsHandler).Methods("GET")
	api.HandleFunc("/formations", service.AddFormationHandler).Methods("POST")
	api.HandleFunc("/formations/{index:[0-9]+}", service.UpdateFormationHandler).Methods("PUT")
	api.HandleFunc("/formations/{index:[0-9]+}", service.DeleteFormationHandler).Methods("DELETE")
	api.HandleFunc("/formations/{index:[0-9]+}/name", service.RenameFormationHandler).Methods("PUT")
	api.HandleFunc("/formations/{index:[0-9]+}/zones", service.AddZoneHandler).Methods("POST")
	api.HandleFunc("/formations/{index:[0-9]+}/zones", service.DeleteZoneHandler).Methods("DELETE")
	api.HandleFunc("/save_formation", service.SaveFormationHandler).Methods("POST")

	api.HandleFunc("/teams", service.ListTeamsHandler).Methods("GET")
	api.HandleFunc("/teams", service.AddTeamHandler).Methods("POST")
	api.HandleFunc("/teams/{index:[0-9]+}", service.UpdateTeamHandler).Methods("PUT")
	api.HandleFunc("/teams/{index:[0-9]+}", service.DeleteTeamHandler).Methods("DELETE")

	api.HandleFunc("/board", service.GetBoardHandler).Methods("GET")
	api.HandleFunc("/board/mesh", service.GetMeshHandler).Methods("GET")
	api.HandleFunc("/board/court", service.GetCourtHandler).Methods("GET")
	api.HandleFunc("/board/ball", service.MoveBallHandler).Methods("POST")
	api.HandleFunc("/board/players/{index:[0-9]+}", service.MovePlayerHandler).Methods("POST")
	api.HandleFunc("/board/players/{index:[0-9]+}/sectors/{preset}", service.SetSectorHandler).Methods("PUT")
	api.HandleFunc("/board/zones", service.AddLiveZoneHandler).Methods("POST")
	api.HandleFunc("/board/zones", service.ClearLiveZonesHandler).Methods("DELETE")
	api.HandleFunc("/board/recall/{index:[0-9]+}", service.RecallHandler).Methods("POST")
	api.HandleFunc("/board/capture", service.CaptureHandler).Methods("POST")
	api.HandleFunc("/board/team/{index:[0-9]+}", service.ApplyTeamHandler).Methods("POST")
}
