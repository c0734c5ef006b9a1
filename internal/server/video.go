package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ytchatbot/config"
	"ytchatbot/internal/rag"
	"ytchatbot/internal/session"
	"ytchatbot/internal/youtube"
	"ytchatbot/provider"
)

// TranscriptFetcher retrieves the caption text for a video id.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// VideoHandler owns the process-video pipeline: resolve the id, fetch the
// transcript, chunk and embed it, then swap the session over to the new index.
type VideoHandler struct {
	Transcripts TranscriptFetcher
	LLM         provider.Provider
	Session     *session.Session
	Retrieval   config.RetrievalConfig
}

func (h *VideoHandler) Register(g *echo.Group) {
	g.POST("/process-video", h.processVideo)
	g.GET("/transcript", h.transcript)
}

type processVideoRequest struct {
	VideoURL string `json:"video_url"`
}

func (h *VideoHandler) processVideo(c echo.Context) error {
	var req processVideoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.VideoURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "video_url is required")
	}

	videoID := youtube.ResolveVideoID(req.VideoURL)
	ctx := c.Request().Context()
	started := time.Now()

	transcript, err := h.Transcripts.Fetch(ctx, videoID)
	if err != nil {
		upstreamErrors.WithLabelValues("transcript").Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, "fetch transcript: "+err.Error())
	}

	chunks := rag.ChunksFromText(transcript, h.Retrieval.ChunkSize, h.Retrieval.ChunkOverlap)
	ix, err := rag.BuildIndex(ctx, h.LLM, chunks)
	if err != nil {
		upstreamErrors.WithLabelValues("embedding").Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, "index transcript: "+err.Error())
	}

	// Only a fully built index replaces the active video; a failed pipeline
	// leaves the previous session intact.
	h.Session.SetVideo(session.Video{ID: videoID, Transcript: transcript, Index: ix})

	videosProcessed.Inc()
	videoProcessingSeconds.Observe(time.Since(started).Seconds())
	log.Printf("[VIDEO] processed %s: %d chunks indexed in %s", videoID, ix.Len(), time.Since(started).Round(time.Millisecond))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"video_id":   videoID,
		"transcript": transcript,
		"message":    "Video processed successfully",
	})
}

func (h *VideoHandler) transcript(c echo.Context) error {
	v, ok := h.Session.Video()
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "No video processed yet. Please process a video first.")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"video_id":   v.ID,
		"transcript": v.Transcript,
	})
}
