// Package server assembles the HTTP surface: REST handlers, the streaming
// WebSocket endpoint and the Prometheus scrape target.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/infopercept/rix/internal/adapters/reporting"
	"github.com/infopercept/rix/internal/adapters/web/handlers"
	web "github.com/infopercept/rix/internal/adapters/web/websocket"
	"github.com/infopercept/rix/internal/core/services/match"
)

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr   string
	Handle *match.Handle

	WSManager      *web.WSManager
	MatchHandler   *handlers.MatchHandler
	ProductHandler *handlers.ProductHandler
	ReportHandler  *handlers.ReportHandler
	srv            *http.Server
}

// NewServer creates a new web server over the active engine handle.
func NewServer(addr string, handle *match.Handle, pdfExporter *reporting.PDFExporter, corpusPath string) *Server {
	return &Server{
		Addr:   addr,
		Handle: handle,

		WSManager:      web.NewWSManager(handle),
		MatchHandler:   handlers.NewMatchHandler(handle),
		ProductHandler: handlers.NewProductHandler(handle),
		ReportHandler:  handlers.NewReportHandler(handle, pdfExporter, corpusPath),
	}
}

// Run starts the server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	handler := SetupRoutes(s)

	// Instrument with OpenTelemetry
	// "rix-server" is the name of the operation (span)
	instrumentedHandler := otelhttp.NewHandler(handler, "rix-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// NotifyReload tells connected clients a new corpus snapshot is active.
func (s *Server) NotifyReload() {
	engine := s.Handle.Get()
	stats := engine.Corpus().Stats()
	s.WSManager.BroadcastReload(stats.Products, stats.Rules)
}
