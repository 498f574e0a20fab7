// Package content extracts display text from uploaded book files.
// Extraction is expensive, so results go through a Redis cache-aside
// layer and concurrent misses for the same book are collapsed.
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ErrUnsupportedFormat is returned for file extensions the extractor
// cannot handle.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DefaultTTL matches the original caching policy for book content.
const DefaultTTL = 15 * time.Minute

const cacheOpTimeout = 2 * time.Second

// Extractor extracts book text with optional Redis caching. A nil cache
// client disables caching; extraction still works.
type Extractor struct {
	cache redis.Cmdable
	ttl   time.Duration
	group singleflight.Group
}

// NewExtractor creates an Extractor. Pass a nil client to run uncached.
func NewExtractor(cache redis.Cmdable, ttl time.Duration) *Extractor {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Extractor{cache: cache, ttl: ttl}
}

func cacheKey(bookID string) string {
	return "book:" + bookID + ":content"
}

// Extract returns the text content of the book's file, from cache when
// possible. Concurrent cache misses for the same book run the extraction
// once and share the result.
func (e *Extractor) Extract(ctx context.Context, bookID, filePath string) (string, error) {
	key := cacheKey(bookID)

	if e.cache != nil {
		getCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
		text, err := e.cache.Get(getCtx, key).Result()
		cancel()
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, redis.Nil) {
			log.Printf("content: cache read failed: %v", err)
		}
	}

	v, err, _ := e.group.Do(key, func() (any, error) {
		text, err := extractFile(filePath)
		if err != nil {
			return "", err
		}
		if e.cache != nil {
			setCtx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
			if err := e.cache.Set(setCtx, key, text, e.ttl).Err(); err != nil {
				log.Printf("content: cache write failed: %v", err)
			}
			cancel()
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the cached content for a book, e.g. after an update.
func (e *Extractor) Invalidate(ctx context.Context, bookID string) {
	if e.cache == nil {
		return
	}
	delCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	if err := e.cache.Del(delCtx, cacheKey(bookID)).Err(); err != nil {
		log.Printf("content: cache invalidate failed: %v", err)
	}
}

// extractFile dispatches on the file extension.
func extractFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".epub":
		return extractEPUB(path)
	case ".fb2":
		return extractFB2(path)
	default:
		return "", ErrUnsupportedFormat
	}
}

// extractPDF pulls the plain text out of a PDF file.
func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}
