package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cnaize/blgen/src/api"
	"github.com/cnaize/blgen/src/core/output"
	"github.com/cnaize/blgen/src/types"
)

type Server struct {
	router *gin.Engine
	server *http.Server
}

func NewServer(
	addr,
	username,
	password string,
	blacklist *types.BlackList,
	updater api.Updater,
	opts output.Options,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	if username != "" {
		r.Use(gin.BasicAuth(gin.Accounts{username: password}))
	}
	r.Use(gin.Recovery())

	api.Register(r, blacklist, updater, opts)

	return &Server{
		router: r,
		server: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
