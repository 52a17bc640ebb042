package main

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const pageCacheKey = "page_tools"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *ToolsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if logger.enabled(logLevelDebug) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "remote", clientKey(r), "duration", time.Since(start))
		}()
		w = rec
	}

	if strings.HasPrefix(r.URL.Path, "/api/") {
		if !s.limiter.allow(clientKey(r)) {
			s.metrics.RecordThrottled()
			w.Header().Set("Retry-After", retryAfterSeconds(s.cfg.APIRateLimitWindow))
			s.writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		s.serveAPI(w, r)
		return
	}

	switch r.URL.Path {
	case "/", "":
		if !allowMethods(w, r, http.MethodGet, http.MethodHead) {
			return
		}
		s.handleToolsPage(w, r)
	case "/healthz":
		setNoStoreHeaders(w, "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	default:
		s.renderErrorPage(w, r, http.StatusNotFound,
			"Page not found",
			"The page you requested could not be found.",
			"Check the URL or go back to the tools page.")
	}
}

// retryAfterSeconds is the rate-limit window rounded up to whole seconds,
// at least 1.
func retryAfterSeconds(window time.Duration) string {
	secs := int64((window + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

func (s *ToolsServer) handleToolsPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !hasToolQuery(q) {
		err := s.serveCachedHTML(w, pageCacheKey, func() ([]byte, error) {
			return s.renderPage("tools", s.baseTemplateData("Tools"))
		})
		if err != nil {
			logger.Error("tools template error", "error", err)
			s.renderErrorPage(w, r, http.StatusInternalServerError,
				"Page error",
				"We couldn't render the tools page.",
				"Template error while rendering the main view.")
		}
		s.metrics.RecordRequest("page", err != nil)
		return
	}

	data := s.baseTemplateData("Tools")
	failed := s.fillPageResults(&data, q)
	payload, err := s.renderPage("tools", data)
	if err != nil {
		logger.Error("tools template error", "error", err)
		s.renderErrorPage(w, r, http.StatusInternalServerError,
			"Page error",
			"We couldn't render the tools page.",
			"Template error while rendering tool results.")
		s.metrics.RecordRequest("page", true)
		return
	}
	setNoStoreHeaders(w, "text/html; charset=utf-8")
	_, _ = w.Write(payload)
	s.metrics.RecordRequest("page", failed)
}

func hasToolQuery(q url.Values) bool {
	for _, k := range []string{"address", "sol", "lamports", "b58input"} {
		if q.Has(k) {
			return true
		}
	}
	return false
}

// fillPageResults runs whichever tools have input in q and stores their
// results or error messages in data. It reports whether any tool failed.
func (s *ToolsServer) fillPageResults(data *pageData, q url.Values) bool {
	failed := false

	if q.Has("address") {
		data.Address.Input = q.Get("address")
		if n := q.Get("network"); n != "" {
			data.Address.Network = n
		}
		if strings.TrimSpace(data.Address.Input) != "" {
			check, err := validateAddress(data.Address.Input, data.Address.Network, s.cfg.AddressRules)
			if err != nil {
				data.Address.Err = err.Error()
				failed = true
			} else {
				data.Address.Check = &check
			}
		}
	}

	if q.Has("sol") || q.Has("lamports") {
		data.Convert.SOL = q.Get("sol")
		data.Convert.Lamports = q.Get("lamports")
		if q.Get("from") == "lamports" {
			data.Convert.From = "lamports"
		}
		if err := fillConversion(&data.Convert); err != nil {
			data.Convert.Err = err.Error()
			failed = true
		}
	}

	if q.Has("b58input") {
		data.Base58.Input = q.Get("b58input")
		if m := q.Get("b58mode"); m != "" {
			data.Base58.Mode = m
		}
		if f := q.Get("b58format"); f != "" {
			data.Base58.Format = f
		}
		res, err := runBase58Tool(data.Base58.Mode, data.Base58.Input, data.Base58.Format, s.cfg.MaxInputBytes)
		if err != nil {
			data.Base58.Err = err.Error()
			failed = true
		} else {
			data.Base58.Result = &res
		}
	}
	return failed
}

// fillConversion fills the empty side of the form from the side named by
// c.From. An empty source field clears the other one.
func fillConversion(c *convertFormData) error {
	if c.From == "lamports" {
		if strings.TrimSpace(c.Lamports) == "" {
			c.SOL = ""
			return nil
		}
		sol, err := lamportsToSOL(c.Lamports)
		if err != nil {
			c.SOL = ""
			return err
		}
		c.SOL = sol
		return nil
	}
	if strings.TrimSpace(c.SOL) == "" {
		c.Lamports = ""
		return nil
	}
	lamports, err := solToLamports(c.SOL)
	if err != nil {
		c.Lamports = ""
		return err
	}
	c.Lamports = strconv.FormatUint(lamports, 10)
	return nil
}

func (s *ToolsServer) renderPage(name string, data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ToolsServer) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, heading, message, detail string) {
	data := s.baseTemplateData(heading)
	data.ErrorPage = &errorPageData{Heading: heading, Message: message, Detail: detail}
	payload, err := s.renderPage("error", data)
	if err != nil {
		logger.Error("error page template error", "error", err, "path", r.URL.Path)
		http.Error(w, message, status)
		return
	}
	setNoStoreHeaders(w, "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
