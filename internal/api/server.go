package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/user/atmos-energy/internal/adapter/atmos"
	"github.com/user/atmos-energy/internal/config"
	"go.uber.org/zap"
)

type Server struct {
	client  *atmos.Client
	config  *config.Config
	cache   *Cache
	metrics *Metrics
	logger  *zap.Logger
	server  *http.Server

	// portal serializes retrievals: one session, one period at a time.
	portal sync.Mutex
}

func NewServer(client *atmos.Client, cfg *config.Config, metrics *Metrics, logger *zap.Logger, addr string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}

	s := &Server{
		client:  client,
		config:  cfg,
		cache:   NewCache(cfg.Settings.CacheTTL),
		metrics: metrics,
		logger:  logger,
	}

	mux := http.NewServeMux()
	s.registerHandlers(mux)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
