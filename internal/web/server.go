package web

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/On-Jun9/HeicPipe/internal/codec"
	"github.com/On-Jun9/HeicPipe/internal/config"
	"github.com/On-Jun9/HeicPipe/internal/log"
	"github.com/On-Jun9/HeicPipe/internal/pipeline"
	"github.com/On-Jun9/HeicPipe/internal/session"
)

type Server struct {
	router    *mux.Router
	hub       *Hub
	store     *session.Store
	limiter   *ipRateLimiter
	cfg       *config.Config
	extractor pipeline.MetadataExtractor
	codec     codec.Service
	logger    *log.Logger
	version   string

	// runMu allows one batch per server at a time.
	runMu sync.Mutex
}

// NewServer wires the routes and starts the websocket hub. A nil cfg or
// logger falls back to defaults.
func NewServer(cfg *config.Config, extractor pipeline.MetadataExtractor, svc codec.Service, logger *log.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = log.NewNop()
	}

	s := &Server{
		router:    mux.NewRouter(),
		hub:       NewHub(),
		store:     session.NewStore(cfg.SessionTTL, logger),
		limiter:   newIPRateLimiter(cfg.UploadRateLimit, uploadBurst),
		cfg:       cfg,
		extractor: extractor,
		codec:     svc,
		logger:    logger,
		version:   "unknown",
	}

	go s.hub.Run()

	s.setupRoutes()
	return s
}

func (s *Server) SetVersion(v string) {
	s.version = v
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/version", s.handleVersion).Methods("GET")
	api.Handle("/convert", s.limiter.middleware(http.HandlerFunc(s.handleConvert))).Methods("POST")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}/files/{index:[0-9]+}", s.handleDownload).Methods("GET")
	api.HandleFunc("/sessions/{id}/archive", s.handleArchive).Methods("GET")
	api.HandleFunc("/ws", s.handleWebSocket)
}

// Start runs the session sweeper and serves until the listener fails.
func (s *Server) Start(addr string) error {
	if err := s.store.Start(session.DefaultSweep); err != nil {
		return err
	}
	defer s.store.Stop()

	s.logger.Info("Starting HeicPipe Web UI at http://" + addr)
	return http.ListenAndServe(addr, s.router)
}
