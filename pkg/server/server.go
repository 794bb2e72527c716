// Package server provides the public API for the embedded Strata
// development server: the SQLite-backed engine exposed over the gRPC
// transport. Implementation details stay in internal/store and
// internal/rpc.
package server

import (
	"fmt"
	"net"

	"google.golang.org/grpc"

	"github.com/mesh-intelligence/strata/internal/rpc"
	"github.com/mesh-intelligence/strata/internal/store"
)

// Config holds server parameters.
type Config struct {
	// DataDir is where environment database files live.
	DataDir string

	// Users maps username to password. Empty accepts any login.
	Users map[string]string
}

// Server owns the engine and the gRPC listener.
type Server struct {
	engine *store.Engine
	grpc   *grpc.Server
}

// New opens the engine and prepares the gRPC service.
func New(cfg Config) (*Server, error) {
	engine, err := store.Open(store.Config{DataDir: cfg.DataDir, Users: cfg.Users})
	if err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}
	gs := grpc.NewServer()
	rpc.RegisterStrataServer(gs, &rpc.Server{Engine: engine})
	return &Server{engine: engine, grpc: gs}, nil
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// ListenAndServe listens on addr and serves until Stop is called.
func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Stop drains in-flight calls and releases the engine.
func (s *Server) Stop() error {
	s.grpc.GracefulStop()
	return s.engine.Close()
}
