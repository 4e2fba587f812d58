package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Server exposes the tracker over HTTP:
//
//	GET /api/axes         all axis states
//	GET /api/axes/{name}  one axis state
//	GET /api/ws           websocket message stream
type Server struct {
	tracker *Tracker
	hub     *Hub
	router  *mux.Router
}

func NewServer(tracker *Tracker, hub *Hub) *Server {
	s := &Server{tracker: tracker, hub: hub, router: mux.NewRouter()}
	s.router.HandleFunc("/api/axes", s.axesHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/api/axes/{name}", s.axisHandler).Methods(http.MethodGet)
	s.router.Handle("/api/ws", hub)
	return s
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) axesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.tracker.Axes())
}

func (s *Server) axisHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	st, ok := s.tracker.Axis(name)
	if !ok {
		http.Error(w, "unknown axis "+name, http.StatusNotFound)
		return
	}
	writeJSON(w, st)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Print(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Handler:     s.router,
		Addr:        addr,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
