package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/ritzau/resection-analyzer/pkg/config"
	"github.com/ritzau/resection-analyzer/pkg/electrodes"
	"github.com/ritzau/resection-analyzer/pkg/logging"
	"github.com/ritzau/resection-analyzer/pkg/network"
	"github.com/ritzau/resection-analyzer/pkg/pubsub"
	"github.com/ritzau/resection-analyzer/pkg/resection"
)

// ResectedResponse is returned by the classification endpoint
type ResectedResponse struct {
	Patient  string                `json:"patient"`
	Dilate   int                   `json:"dilate"`
	Suffix   string                `json:"suffix"`
	Resected []resection.Electrode `json:"resected"`
}

// CentralityRequest is the body of POST /api/centrality
type CentralityRequest struct {
	Adjacency [][]float64 `json:"adjacency"`
	Nodes     []int       `json:"nodes"`
	PerNode   bool        `json:"perNode"` // Return the per-node vector instead
}

// CentralityResponse carries either the region score or the per-node vector
type CentralityResponse struct {
	Nodes      []int     `json:"nodes,omitempty"`
	Control    *float64  `json:"control,omitempty"`
	NodeVector []float64 `json:"nodeControl,omitempty"`
	Components int       `json:"components"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes classification and centrality over HTTP
type Server struct {
	router     *mux.Router
	patients   *config.Patients
	classifier *resection.Classifier
	engine     *network.Engine
	events     pubsub.Publisher
}

// NewServer creates a server backed by the given patient registry
func NewServer(patients *config.Patients) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		patients:   patients,
		classifier: resection.NewClassifier(patients),
		engine:     network.NewEngine(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/patients", s.handlePatients).Methods("GET")
	api.HandleFunc("/patients/{id}/resected", s.handleResected).Methods("GET")
	api.HandleFunc("/centrality", s.handleCentrality).Methods("POST")
	api.HandleFunc("/events", s.handleEvents).Methods("GET")
}

// StreamEvents exposes report progress from p at GET /api/events
func (s *Server) StreamEvents(p pubsub.Publisher) {
	s.events = p
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePatients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"patients": s.patients.IDs()})
}

func (s *Server) handleResected(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["id"]

	dilate := 0
	if raw := r.URL.Query().Get("dilate"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("dilate must be an integer: %q", raw))
			return
		}
		dilate = v
	}

	resected, err := s.classifier.ResectedElectrodes(r.Context(), patientID, dilate)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, ResectedResponse{
		Patient:  patientID,
		Dilate:   dilate,
		Suffix:   resection.Suffix(dilate),
		Resected: resected,
	})
}

func (s *Server) handleCentrality(w http.ResponseWriter, r *http.Request) {
	var req CentralityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	adj, err := network.NewAdjacency(req.Adjacency)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	resp := CentralityResponse{Components: adj.Components()}
	if req.PerNode {
		vec, err := s.engine.NodeControl(adj)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		resp.NodeVector = vec
	} else {
		nodes, err := network.LesionedIndices(adj.Len(), req.Nodes)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		control, err := s.engine.RegionControl(adj, nodes)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		resp.Nodes = nodes
		resp.Control = &control
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, http.StatusNotFound, errors.New("event stream disabled; start serve with --watch"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	sub, err := s.events.Subscribe(r.Context(), pubsub.TopicReports)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logging.DebugContext(r.Context(), "event stream opened")
	for ev := range sub.Events() {
		if err := pubsub.WriteSSE(w, ev); err != nil {
			logging.DebugContext(r.Context(), "event stream write failed", "error", err)
			return
		}
		flusher.Flush()
	}
	logging.DebugContext(r.Context(), "event stream closed")
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var (
		configErr *config.ConfigurationError
		formatErr *electrodes.FormatError
		dimErr    *network.DimensionError
		asymErr   *network.AsymmetryError
		idxErr    *network.NodeIndexError
		divErr    *network.DivisionByZeroError
	)
	switch {
	case errors.As(err, &configErr):
		return http.StatusNotFound
	case errors.As(err, &dimErr), errors.As(err, &asymErr), errors.As(err, &idxErr):
		return http.StatusBadRequest
	case errors.As(err, &formatErr), errors.As(err, &divErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// Start serves on port until ctx is cancelled
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
