package main

import (
	"net/url"
	"strings"
)

// QuickLink is one external link shown next to the tools.
type QuickLink struct {
	Label string `json:"label" toml:"label"`
	URL   string `json:"url" toml:"url"`
}

func defaultQuickLinks() []QuickLink {
	return []QuickLink{
		{Label: "Solana Explorer", URL: "https://explorer.solana.com/"},
		{Label: "RPC Status", URL: "https://status.solana.com/"},
		{Label: "JSON RPC Docs", URL: "https://solana.com/docs/rpc"},
		{Label: "Token List", URL: "https://token-list.solana.com/"},
	}
}

// sanitizeQuickLinks drops entries with an empty label or a URL that is not
// absolute http(s). Dropped entries are logged.
func sanitizeQuickLinks(links []QuickLink) []QuickLink {
	out := make([]QuickLink, 0, len(links))
	for _, l := range links {
		label := strings.TrimSpace(l.Label)
		raw := strings.TrimSpace(l.URL)
		if label == "" {
			logger.Warn("dropping quick link without label", "url", raw)
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			logger.Warn("dropping quick link with bad url", "label", label, "url", raw)
			continue
		}
		out = append(out, QuickLink{Label: label, URL: u.String()})
	}
	return out
}
