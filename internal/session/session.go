package session

import (
	"sync"

	"ytchatbot/internal/rag"
)

// Video is the processed-video triple the service answers questions
// against. It is always replaced as a whole.
type Video struct {
	ID         string
	Transcript string
	Index      *rag.Index
}

// Session is the process-wide coordinator for the single active video.
// All mutation goes through SetVideo under the lock, so readers always see
// either no video or a fully constructed one, never a half-updated triple.
type Session struct {
	mu    sync.RWMutex
	video *Video
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// SetVideo atomically replaces the active video, transcript and index.
func (s *Session) SetVideo(v Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.video = &v
}

// Video returns a snapshot of the active video, if any.
func (s *Session) Video() (Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.video == nil {
		return Video{}, false
	}
	return *s.video, true
}

// Transcript returns the active transcript, if any.
func (s *Session) Transcript() (string, bool) {
	v, ok := s.Video()
	if !ok {
		return "", false
	}
	return v.Transcript, true
}

// Index returns the active retrieval index, if any.
func (s *Session) Index() (*rag.Index, bool) {
	v, ok := s.Video()
	if !ok {
		return nil, false
	}
	return v.Index, true
}
