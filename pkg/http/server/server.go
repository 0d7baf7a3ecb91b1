package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server interface {
	// Start binds the port and serves in the background.
	Start(onFailure func(error)) error
	// Addr is the bound address once started.
	Addr() string
	Shutdown(ctx context.Context) error
}

type server struct {
	httpSrv *http.Server
	ln      net.Listener
	group   errgroup.Group
	log     *zap.Logger
}

func newServer(log *zap.Logger, conf Config, handler http.Handler) Server {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(conf.Port),
		Handler:           handler,
		ReadHeaderTimeout: conf.Connection.ReadHeaderTimeout,
		ReadTimeout:       conf.Connection.ReadTimeout,
		WriteTimeout:      conf.Connection.WriteTimeout,
		IdleTimeout:       conf.Connection.IdleTimeout,
		MaxHeaderBytes:    conf.Connection.MaxHeaderBytes,
	}
	return &server{
		httpSrv: srv,
		log:     log,
	}
}

func (s *server) Start(onFailure func(error)) error {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpSrv.Addr, err)
	}
	s.ln = ln
	s.log.Info("starting HTTP server", zap.String("addr", ln.Addr().String()))

	s.group.Go(func() error {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server stopped with error", zap.Error(err))
			if onFailure != nil {
				onFailure(err)
			}
			return err
		}
		return nil
	})
	return nil
}

func (s *server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Shutdown stops accepting connections and waits for the serve goroutine.
func (s *server) Shutdown(ctx context.Context) error {
	if s.ln == nil {
		return nil
	}
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return s.group.Wait()
}
