package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ytchatbot/internal/history"
	"ytchatbot/internal/rag"
	"ytchatbot/internal/session"
)

// QuestionsHandler answers questions against the active video and manages the
// question/answer history log.
type QuestionsHandler struct {
	Session  *session.Session
	History  history.Store
	Answerer *rag.Answerer
}

func (h *QuestionsHandler) Register(g *echo.Group) {
	g.POST("/ask-question", h.askQuestion)
	g.GET("/history", h.listHistory)
	g.POST("/clear-history", h.clearHistory)
}

type askQuestionRequest struct {
	Question string `json:"question"`
}

func (h *QuestionsHandler) askQuestion(c echo.Context) error {
	var req askQuestionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	// The active-video check runs before any provider traffic so an idle
	// service rejects questions without spending tokens.
	ix, ok := h.Session.Index()
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "No video processed yet. Please process a video first.")
	}

	ctx := c.Request().Context()
	answer, err := h.Answerer.Answer(ctx, ix, req.Question)
	if err != nil {
		upstreamErrors.WithLabelValues("completion").Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, "answer question: "+err.Error())
	}

	if _, err := h.History.Append(ctx, req.Question, answer, c.RealIP()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "record history: "+err.Error())
	}

	questionsAnswered.Inc()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"question": req.Question,
		"answer":   answer,
	})
}

func (h *QuestionsHandler) listHistory(c echo.Context) error {
	entries, err := h.History.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list history: "+err.Error())
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"history": entries,
	})
}

func (h *QuestionsHandler) clearHistory(c echo.Context) error {
	if err := h.History.Clear(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "clear history: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "History cleared",
	})
}
