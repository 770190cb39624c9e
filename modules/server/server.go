package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"gogofolio/modules/logger"
)

type Server struct {
	httpServer  *http.Server
	listener    net.Listener
	Config      *Config
	Handler     http.Handler
	middlewares []func(http.Handler) http.Handler
	log         logger.Logger
}

type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	TLSConfig       *tls.Config
	EnableHTTP2     bool
	GracefulTimeout time.Duration
	TCPKeepAlive    time.Duration
	// SocketBuffer sets the read and write buffer of accepted connections
	// when positive.
	SocketBuffer int
}

func NewServer(config *Config, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		Config:      config,
		middlewares: []func(http.Handler) http.Handler{},
		log:         log.Named("server"),
	}
}

func (s *Server) Use(middleware func(http.Handler) http.Handler) {
	s.middlewares = append(s.middlewares, middleware)
}

func (s *Server) SetHandler(handler http.Handler) {
	s.Handler = handler
}

// chainMiddleware wraps h so the first registered middleware runs first.
func (s *Server) chainMiddleware(h http.Handler) http.Handler {
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		h = s.middlewares[i](h)
	}
	return h
}

// Listen binds the listener. Start calls it when it has not been called.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.Config.Host, fmt.Sprint(s.Config.Port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = &tcpKeepAliveListener{
		TCPListener:     ln.(*net.TCPListener),
		keepAlivePeriod: s.Config.TCPKeepAlive,
		socketBuffer:    s.Config.SocketBuffer,
	}
	return nil
}

// Addr is the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	if err := s.prepare(); err != nil {
		return err
	}

	s.log.Info("listening",
		logger.String("addr", s.listener.Addr().String()),
		logger.Bool("http2", s.Config.EnableHTTP2),
		logger.Bool("tls", s.Config.TLSConfig != nil))

	var err error
	if s.Config.TLSConfig != nil {
		err = s.httpServer.ServeTLS(s.listener, "", "")
	} else {
		err = s.httpServer.Serve(s.listener)
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// prepare binds the listener and builds the http.Server once.
func (s *Server) prepare() error {
	if s.httpServer != nil {
		return nil
	}
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	handler := s.chainMiddleware(s.Handler)

	if s.Config.EnableHTTP2 && s.Config.TLSConfig == nil {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	s.httpServer = &http.Server{
		Handler:        handler,
		ReadTimeout:    s.Config.ReadTimeout,
		WriteTimeout:   s.Config.WriteTimeout,
		IdleTimeout:    s.Config.IdleTimeout,
		MaxHeaderBytes: s.Config.MaxHeaderBytes,
	}

	if s.Config.TLSConfig != nil {
		s.httpServer.TLSConfig = s.Config.TLSConfig
		if s.Config.EnableHTTP2 {
			if err := http2.ConfigureServer(s.httpServer, &http2.Server{}); err != nil {
				return fmt.Errorf("configure http2: %w", err)
			}
		}
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error("shutdown", logger.Err(err))
		return err
	}
	s.log.Info("stopped")
	return nil
}

// Run serves until ctx is cancelled and then shuts down, giving in-flight
// requests GracefulTimeout to finish.
func (s *Server) Run(ctx context.Context) error {
	if err := s.prepare(); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	timeout := s.Config.GracefulTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

type tcpKeepAliveListener struct {
	*net.TCPListener
	keepAlivePeriod time.Duration
	socketBuffer    int
}

func (ln *tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}

	if err := tc.SetKeepAlive(true); err != nil {
		tc.Close()
		return nil, err
	}

	if ln.keepAlivePeriod > 0 {
		if err := tc.SetKeepAlivePeriod(ln.keepAlivePeriod); err != nil {
			tc.Close()
			return nil, err
		}
	}

	if ln.socketBuffer > 0 {
		if err := tc.SetReadBuffer(ln.socketBuffer); err != nil {
			tc.Close()
			return nil, err
		}
		if err := tc.SetWriteBuffer(ln.socketBuffer); err != nil {
			tc.Close()
			return nil, err
		}
	}

	return tc, nil
}
