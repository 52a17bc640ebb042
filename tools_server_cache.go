package main

import (
	"fmt"
	"net/http"
	"time"
)

const shortEndpointCacheTTL = 5 * time.Second

func cacheControlShortTTL(private bool) string {
	scope := "public"
	if private {
		scope = "private"
	}
	seconds := int(shortEndpointCacheTTL / time.Second)
	return fmt.Sprintf("%s, max-age=%d, stale-while-revalidate=%d", scope, seconds, seconds)
}

func setShortJSONCacheHeaders(w http.ResponseWriter, private bool) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", cacheControlShortTTL(private))
}

func setShortHTMLCacheHeaders(w http.ResponseWriter, private bool) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControlShortTTL(private))
}

func setNoStoreHeaders(w http.ResponseWriter, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
}

// serveCachedHTML writes the cached page for key, rebuilding it when it is
// missing or older than shortEndpointCacheTTL.
func (s *ToolsServer) serveCachedHTML(w http.ResponseWriter, key string, build func() ([]byte, error)) error {
	now := s.now()
	s.pageMu.RLock()
	entry, ok := s.pages[key]
	s.pageMu.RUnlock()
	if !ok || !now.Before(entry.expiresAt) || len(entry.payload) == 0 {
		payload, err := build()
		if err != nil {
			return err
		}
		entry = cachedHTMLPage{
			payload:   payload,
			updatedAt: now,
			expiresAt: now.Add(shortEndpointCacheTTL),
		}
		s.pageMu.Lock()
		s.pages[key] = entry
		s.pageMu.Unlock()
	}
	setShortHTMLCacheHeaders(w, false)
	w.Header().Set("X-HTML-Updated-At", entry.updatedAt.UTC().Format(time.RFC3339))
	_, err := w.Write(entry.payload)
	return err
}

func (s *ToolsServer) cachedJSON(key string, ttl time.Duration, build func() ([]byte, error)) ([]byte, time.Time, error) {
	now := s.now()
	s.jsonMu.RLock()
	entry, ok := s.jsonResp[key]
	s.jsonMu.RUnlock()
	if ok && now.Before(entry.expiresAt) && len(entry.payload) > 0 {
		return entry.payload, entry.updatedAt, nil
	}

	payload, err := build()
	if err != nil {
		return nil, time.Time{}, err
	}
	s.jsonMu.Lock()
	s.jsonResp[key] = cachedJSONResponse{
		payload:   payload,
		updatedAt: now,
		expiresAt: now.Add(ttl),
	}
	s.jsonMu.Unlock()
	return payload, now, nil
}

func (s *ToolsServer) serveCachedJSON(w http.ResponseWriter, key string, ttl time.Duration, build func() ([]byte, error)) {
	payload, updatedAt, err := s.cachedJSON(key, ttl, build)
	if err != nil {
		logger.Error("cached json response error", "key", key, "error", err)
		s.writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	setShortJSONCacheHeaders(w, false)
	w.Header().Set("X-JSON-Updated-At", updatedAt.UTC().Format(time.RFC3339))
	if _, err := w.Write(payload); err != nil {
		logger.Debug("write cached json response", "key", key, "error", err)
	}
}
