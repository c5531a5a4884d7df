package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

type HTTPServer struct {
	s               *http.Server
	shutdownTimeout time.Duration
}

func NewHTTPServer(ctx context.Context, port string, shutdownTimeout time.Duration, handler http.Handler) *HTTPServer {
	return &HTTPServer{
		s: &http.Server{
			Handler:           handler,
			Addr:              ":" + port,
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext: func(listener net.Listener) context.Context {
				return ctx
			},
		},
		shutdownTimeout: shutdownTimeout,
	}
}

func (s *HTTPServer) Start() error {
	err := s.s.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.s.Shutdown(ctx)
}

// Run serves until ctx is done, then gives in-flight requests
// shutdownTimeout to finish.
func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
