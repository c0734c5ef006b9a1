package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ytchatbot/config"
	"ytchatbot/internal/history"
	"ytchatbot/internal/rag"
	"ytchatbot/internal/session"
	"ytchatbot/internal/youtube"
	"ytchatbot/provider"
)

// Run wires the service together and starts the HTTP listener.
func Run(cfg *config.Config, addr string) error {
	e := newEcho()

	llm, err := provider.NewProvider(provider.OpenAI, cfg.Providers.OpenAI)
	if err != nil {
		return err
	}
	transcripts := youtube.NewTranscriptClient(cfg.Transcript.BaseURL, cfg.Transcript.Language, cfg.Transcript.Timeout)
	hist, err := history.NewStore(cfg.History)
	if err != nil {
		return err
	}
	sess := session.New()

	api := e.Group("/api")

	vh := &VideoHandler{
		Transcripts: transcripts,
		LLM:         llm,
		Session:     sess,
		Retrieval:   cfg.Retrieval,
	}
	vh.Register(api)

	qh := &QuestionsHandler{
		Session: sess,
		History: hist,
		Answerer: &rag.Answerer{
			Provider: llm,
			TopK:     cfg.Retrieval.TopK,
			Hybrid:   cfg.Retrieval.Hybrid,
		},
	}
	qh.Register(api)

	if addr == "" {
		addr = cfg.Server.Address
	}
	if addr == "" {
		addr = ":8085"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// newEcho builds the echo instance with the shared middleware stack and the
// unified JSON error handler.
func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}
