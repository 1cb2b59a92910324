package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"backendrouter/internal/router"
	"backendrouter/pkg/backend"
	"backendrouter/pkg/logger"
	"backendrouter/pkg/resolver"
	"backendrouter/pkg/strategy"
)

// Reserved query parameters; every other parameter is a criterion.
const (
	paramName     = "name"
	paramAccept   = "accept"
	paramAcceptor = "acceptor"
)

// Server encapsulates the HTTP handler and routing logic
type Server struct {
	engine    router.Engine
	acceptors map[string]*strategy.Acceptor
	mux       *http.ServeMux
}

// NewServer initialises the HTTP API. acceptors are the named expressions
// clients can refer to with ?acceptor=.
func NewServer(engine router.Engine, acceptors map[string]*strategy.Acceptor) *Server {
	s := &Server{
		engine:    engine,
		acceptors: acceptors,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/backends", s.handleList)
	mux.HandleFunc("GET /v1/backends/{name}", s.handleGet)
	mux.HandleFunc("GET /v1/acceptors", s.handleAcceptors)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	s.mux = mux
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// Start starts the standard library net/http server
func (s *Server) Start(addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	logger.Printf("[Server] Starting backend router on %s", addr)
	return server.ListenAndServe()
}

type backendView struct {
	Name          string             `json:"name"`
	Configuration backend.Attributes `json:"configuration"`
}

type listResponse struct {
	Backends []backendView `json:"backends"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := s.query(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	q.Name = r.URL.Query().Get(paramName)

	found, err := s.engine.Backends(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := listResponse{Backends: make([]backendView, 0, len(found))}
	for _, b := range found {
		resp.Backends = append(resp.Backends, backendView{Name: b.Name(), Configuration: b.Configuration()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	q, err := s.query(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	q.Name = r.PathValue("name")

	b, err := s.engine.Get(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, backendView{Name: b.Name(), Configuration: b.Configuration()})
}

func (s *Server) handleAcceptors(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]string, len(s.acceptors))
	for name, a := range s.acceptors {
		out[name] = a.String()
	}
	writeJSON(w, http.StatusOK, out)
}

// query builds criteria and the acceptance predicate from URL parameters.
func (s *Server) query(r *http.Request) (router.Query, error) {
	values := r.URL.Query()

	var preds []backend.Predicate
	if name := values.Get(paramAcceptor); name != "" {
		a, ok := s.acceptors[name]
		if !ok {
			return router.Query{}, errors.New("unknown acceptor " + name)
		}
		preds = append(preds, a.Predicate())
	}
	if expression := values.Get(paramAccept); expression != "" {
		a, err := strategy.NewAcceptor(expression, nil)
		if err != nil {
			return router.Query{}, err
		}
		preds = append(preds, a.Predicate())
	}

	criteria := backend.Criteria{}
	for key := range values {
		switch key {
		case paramName, paramAccept, paramAcceptor:
			continue
		}
		criteria[key] = backend.ParseValue(values.Get(key))
	}

	return router.Query{Criteria: criteria, Accept: strategy.All(preds...)}, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, resolver.ErrBackendNotFound):
		status = http.StatusNotFound
	case errors.Is(err, router.ErrAmbiguous):
		status = http.StatusConflict
	default:
		logger.Printf("[Server] Selection failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
