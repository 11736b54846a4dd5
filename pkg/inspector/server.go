// Package inspector serves a read-only HTTP view of a live shadow tree.
package inspector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/go-drift/shadow/pkg/core"
	shadowerrors "github.com/go-drift/shadow/pkg/errors"
	"github.com/go-drift/shadow/pkg/shadowtree"
)

// Server exposes the current revision of a tree over HTTP.
//
// Every handler reads the published revision without taking the commit
// lock, so inspection never delays a commit.
type Server struct {
	tree   *shadowtree.ShadowTree
	logger zerolog.Logger
	router *gin.Engine

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// TreeResponse is the body of GET /tree.
type TreeResponse struct {
	TreeID    string               `json:"treeId"`
	SurfaceID core.SurfaceID       `json:"surfaceId"`
	Revision  uint64               `json:"revision"`
	Timestamp time.Time            `json:"timestamp"`
	Root      *shadowtree.NodeInfo `json:"root"`
}

// FamilyResponse is the body of GET /families/:tag.
type FamilyResponse struct {
	Tag       core.Tag `json:"tag"`
	Component string   `json:"component"`
	Revision  uint64   `json:"revision"`
	Commits   uint64   `json:"commits"`
	State     any      `json:"state"`
}

// New returns a server for tree. Requests are logged to logger.
func New(tree *shadowtree.ShadowTree, logger zerolog.Logger) *Server {
	s := &Server{tree: tree, logger: logger}

	router := gin.New()
	router.Use(requestLogger(logger), recovery())
	router.GET("/health", s.handleHealth)
	router.GET("/tree", s.handleTree)
	router.GET("/families/:tag", s.handleFamily)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router = router
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and serves in the background. It returns the bound
// address, which differs from addr when addr uses port 0. Starting a running
// server returns its current address.
func (s *Server) Start(addr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return s.listener.Addr().String(), nil
	}

	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("inspector listen: %w", err)
	}

	server := &http.Server{Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
			s.logger.Error().Err(err).Msg("inspector stopped")
		}
	}()

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("inspector listening")
	return listener.Addr().String(), nil
}

// Shutdown gracefully stops the server. It is a no-op when not running.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	rev := s.tree.CurrentRevision()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"treeId":   s.tree.ID().String(),
		"revision": rev.Number,
	})
}

func (s *Server) handleTree(c *gin.Context) {
	rev := s.tree.CurrentRevision()
	if rev.Root == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no tree committed"})
		return
	}
	c.JSON(http.StatusOK, TreeResponse{
		TreeID:    s.tree.ID().String(),
		SurfaceID: s.tree.SurfaceID(),
		Revision:  rev.Number,
		Timestamp: rev.Timestamp,
		Root:      shadowtree.Describe(rev.Root),
	})
}

func (s *Server) handleFamily(c *gin.Context) {
	tag, err := strconv.ParseInt(c.Param("tag"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tag must be an integer"})
		return
	}

	node := shadowtree.Find(s.tree.Root(), core.Tag(tag))
	if node == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no node with tag %d", tag)})
		return
	}

	family := node.FamilyHandle()
	state := family.MostRecentStateHandle()
	c.JSON(http.StatusOK, FamilyResponse{
		Tag:       family.Tag(),
		Component: family.ComponentName(),
		Revision:  state.Revision(),
		Commits:   family.CommitCount(),
		State:     state.DataAny(),
	})
}

// recovery reports a handler panic to the shadow error handler and answers
// with 500. It runs inside requestLogger so the failed request is logged.
func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer shadowerrors.RecoverWithCallback("inspector "+c.Request.URL.Path, func(any) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		})
		c.Next()
	}
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		event := logger.Debug()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	}
}
