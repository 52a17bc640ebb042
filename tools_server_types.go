package main

import (
	"embed"
	"fmt"
	"html/template"
	"sync"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ToolsServer serves the tools page and the JSON API.
type ToolsServer struct {
	cfg      Config
	tmpl     *template.Template
	metrics  *ToolsMetrics
	limiter  *apiRateLimiter
	now      func() time.Time
	pageMu   sync.RWMutex
	pages    map[string]cachedHTMLPage
	jsonMu   sync.RWMutex
	jsonResp map[string]cachedJSONResponse
}

type cachedHTMLPage struct {
	payload   []byte
	updatedAt time.Time
	expiresAt time.Time
}

type cachedJSONResponse struct {
	payload   []byte
	updatedAt time.Time
	expiresAt time.Time
}

type errorPageData struct {
	Heading string
	Message string
	Detail  string
}

type addressFormData struct {
	Input   string
	Network string
	Check   *AddressCheck
	Err     string
}

type convertFormData struct {
	SOL      string
	Lamports string
	From     string
	Err      string
}

type base58FormData struct {
	Mode   string
	Format string
	Input  string
	Result *base58Result
	Err    string
}

type pageData struct {
	Title      string
	BrandName  string
	Tagline    string
	Uptime     string
	RenderedAt string
	Links      []QuickLink
	Address    addressFormData
	Convert    convertFormData
	Base58     base58FormData
	ErrorPage  *errorPageData
}

func NewToolsServer(cfg Config, metrics *ToolsMetrics) (*ToolsServer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if metrics == nil {
		metrics = NewToolsMetrics()
	}
	return &ToolsServer{
		cfg:      cfg,
		tmpl:     tmpl,
		metrics:  metrics,
		limiter:  newAPIRateLimiter(cfg.APIRateLimitRequests, cfg.APIRateLimitWindow),
		now:      time.Now,
		pages:    make(map[string]cachedHTMLPage),
		jsonResp: make(map[string]cachedJSONResponse),
	}, nil
}

func (s *ToolsServer) baseTemplateData(title string) pageData {
	now := s.now()
	return pageData{
		Title:      title,
		BrandName:  s.cfg.BrandName,
		Tagline:    s.cfg.Tagline,
		Uptime:     humanUptime(s.metrics.Uptime(now)),
		RenderedAt: now.UTC().Format(time.RFC3339),
		Links:      s.cfg.QuickLinks,
		Address:    addressFormData{Network: s.cfg.AddressNetwork},
		Convert:    convertFormData{From: "sol"},
		Base58:     base58FormData{Mode: modeEncode, Format: inputFormatText},
	}
}
