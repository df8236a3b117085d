package metrics

import (
	"fmt"
	"net"
	"time"

	"aria-bot/internal/logging"

	"github.com/valyala/fasthttp"
)

// Server exposes /metrics and /healthz over fasthttp.
type Server struct {
	exporter *MetricsExporter
	server   *fasthttp.Server
	ln       net.Listener
}

func NewServer(registry *MetricsRegistry) *Server {
	s := &Server{exporter: NewMetricsExporter(registry)}
	s.server = &fasthttp.Server{
		Handler:      s.handle,
		Name:         "aria-metrics",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() && !ctx.IsHead() {
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		return
	}

	switch string(ctx.Path()) {
	case "/metrics":
		ctx.SetContentType("text/plain; version=0.0.4")
		ctx.SetBodyString(s.exporter.Export())
	case "/healthz":
		ctx.SetContentType("text/plain")
		ctx.SetBodyString("ok\n")
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil {
			logging.Error("Metrics server stopped: %v", err)
		}
	}()

	logging.Info("Metrics listening on http://%s/metrics", ln.Addr())
	return nil
}

// Addr is the bound address, useful when started on port 0.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *Server) Stop() error {
	return s.server.Shutdown()
}
