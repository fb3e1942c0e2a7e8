// Package server exposes the answer pipeline over HTTP.
package server

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wakalAIagency/tamhid-chat-api/answer"
	"github.com/wakalAIagency/tamhid-chat-api/store"
)

// AskService is the part of the answer pipeline the HTTP layer depends on.
type AskService interface {
	Ask(ctx context.Context, req answer.Request) (answer.Result, error)
}

// Config wires the server's dependencies.
type Config struct {
	Service     AskService
	Logs        store.LogStore
	DefaultLang string
	Log         *zap.SugaredLogger
}

// Server handles HTTP requests for asking questions and recording feedback.
type Server struct {
	svc         AskService
	logs        store.LogStore
	defaultLang string
	log         *zap.SugaredLogger
}

func New(cfg Config) *Server {
	return &Server{
		svc:         cfg.Service,
		logs:        cfg.Logs,
		defaultLang: cfg.DefaultLang,
		log:         cfg.Log,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type"},
	}))

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/ask", s.handleAsk)
		api.POST("/feedback", s.handleFeedback)
		api.GET("/logs", s.handleListLogs)
		api.GET("/logs/:id", s.handleGetLog)
		api.GET("/metrics/summary", s.handleSummary)
	}

	return router
}
