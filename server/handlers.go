package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wakalAIagency/tamhid-chat-api/answer"
	"github.com/wakalAIagency/tamhid-chat-api/core"
	"github.com/wakalAIagency/tamhid-chat-api/store"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Q) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing q"})
		return
	}

	lang := s.defaultLang
	if req.Lang != nil {
		lang = *req.Lang
	}

	res, err := s.svc.Ask(c.Request.Context(), answer.Request{
		Question:  req.Q,
		TopK:      req.TopK,
		Lang:      lang,
		SessionID: req.SessionID,
	})
	if err != nil {
		if errors.Is(err, core.ErrEmptyQuestion) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing q"})
			return
		}
		s.log.Errorw("ask failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, askResponse{
		Answer:  res.Answer.Text,
		Matches: res.Matches,
		LogID:   res.LogID,
	})
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.LogID == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing or invalid logId"})
		return
	}
	rating, err := parseRating(req.Rating)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	f := store.Feedback{LogID: req.LogID, Rating: rating, Comment: req.Comment}
	if err := s.logs.AddFeedback(c.Request.Context(), f); err != nil {
		s.log.Errorw("feedback write failed", "log_id", req.LogID, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleListLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, err := s.logs.ListLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (s *Server) handleGetLog(c *gin.Context) {
	l, err := s.logs.GetLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) handleSummary(c *gin.Context) {
	m, err := s.logs.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}
