package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/voulezvous/translation-ledger/internal/handlers"
	"github.com/voulezvous/translation-ledger/internal/provider"
	"github.com/voulezvous/translation-ledger/internal/services"
)

type Server struct {
	httpAddr string
	pipeline *services.PipelineService
	prov     provider.Provider
}

func NewServer(httpAddr string, pipeline *services.PipelineService, prov provider.Provider) *Server {
	return &Server{
		httpAddr: httpAddr,
		pipeline: pipeline,
		prov:     prov,
	}
}

func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	translationHandler := handlers.NewTranslationHandler(s.pipeline, s.prov)
	translationHandler.RegisterRoutes(mux)

	slog.Info("HTTP server starting",
		"addr", s.httpAddr,
		"provider", s.prov.Name(),
		"endpoints", []string{"/v1/translations", "/ledger", "/logs", "/healthz"})

	return http.ListenAndServe(s.httpAddr, mux)
}
