package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nsorokina/bookclub/internal/model"
	"github.com/nsorokina/bookclub/internal/store"
)

// progressCacheTTL matches the content cache policy.
const progressCacheTTL = 15 * time.Minute

const cacheOpTimeout = 2 * time.Second

func progressCacheKey(userID, bookID string) string {
	return "progress:" + userID + ":" + bookID
}

func (s *Server) cachedProgress(ctx context.Context, userID, bookID string) *model.ReadingProgress {
	if s.cache == nil {
		return nil
	}
	getCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	data, err := s.cache.Get(getCtx, progressCacheKey(userID, bookID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("server: progress cache read failed: %v", err)
		}
		return nil
	}
	var progress model.ReadingProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil
	}
	return &progress
}

func (s *Server) storeProgressCache(ctx context.Context, progress *model.ReadingProgress) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(progress)
	if err != nil {
		return
	}
	setCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	key := progressCacheKey(progress.UserID, progress.BookID)
	if err := s.cache.Set(setCtx, key, data, progressCacheTTL).Err(); err != nil {
		log.Printf("server: progress cache write failed: %v", err)
	}
}

func (s *Server) dropProgressCache(ctx context.Context, userID, bookID string) {
	if s.cache == nil {
		return
	}
	delCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	if err := s.cache.Del(delCtx, progressCacheKey(userID, bookID)).Err(); err != nil {
		log.Printf("server: progress cache invalidate failed: %v", err)
	}
}

func (s *Server) handleGetReadingProgress(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	bookID := r.PathValue("bookID")

	if progress := s.cachedProgress(r.Context(), caller, bookID); progress != nil {
		writeJSON(w, http.StatusOK, progress)
		return
	}

	progress, err := s.store.GetReadingProgress(caller, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no progress found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}
	s.storeProgressCache(r.Context(), progress)
	writeJSON(w, http.StatusOK, progress)
}

type saveProgressRequest struct {
	CurrentPage int     `json:"current_page" validate:"gte=0"`
	Percent     float64 `json:"percent" validate:"gte=0,lte=100"`
}

func (s *Server) handleSaveReadingProgress(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	var req saveProgressRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	bookID := r.PathValue("bookID")
	if err := s.store.SaveReadingProgress(caller, bookID, req.CurrentPage, req.Percent); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save progress")
		return
	}
	s.dropProgressCache(r.Context(), caller, bookID)
	progress, err := s.store.GetReadingProgress(caller, bookID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}
	writeJSON(w, http.StatusCreated, progress)
}

// updateProgressRequest uses pointer fields so omitted values keep their
// stored counterparts.
type updateProgressRequest struct {
	CurrentPage *int     `json:"current_page" validate:"omitempty,gte=0"`
	Percent     *float64 `json:"percent" validate:"omitempty,gte=0,lte=100"`
}

func (s *Server) handleUpdateReadingProgress(w http.ResponseWriter, r *http.Request) {
	caller := requireCaller(w, r)
	if caller == "" {
		return
	}
	bookID := r.PathValue("bookID")
	existing, err := s.store.GetReadingProgress(caller, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no progress found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}

	var req updateProgressRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	page := existing.CurrentPage
	if req.CurrentPage != nil {
		page = *req.CurrentPage
	}
	percent := existing.Percent
	if req.Percent != nil {
		percent = *req.Percent
	}
	if err := s.store.SaveReadingProgress(caller, bookID, page, percent); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save progress")
		return
	}
	s.dropProgressCache(r.Context(), caller, bookID)
	progress, err := s.store.GetReadingProgress(caller, bookID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
