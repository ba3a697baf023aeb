package httpServer

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/KotFed0t/invest_tracker/config"
)

type HTTPServer struct {
	srv *http.Server
	ln  net.Listener
}

func New(cfg *config.Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{
		srv: &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
	}
}

// Start binds the listener synchronously so address errors surface here, then
// serves in the background.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped unexpectedly", slog.String("err", err.Error()))
		}
	}()
	slog.Info("http server started", slog.String("addr", ln.Addr().String()))
	return nil
}

func (s *HTTPServer) Addr() string {
	if s.ln == nil {
		return s.srv.Addr
	}
	return s.ln.Addr().String()
}

func (s *HTTPServer) Stop(ctx context.Context) {
	slog.Info("start stopping http server")
	if err := s.srv.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown failed", slog.String("err", err.Error()))
	}
	slog.Info("http server stopped")
}
