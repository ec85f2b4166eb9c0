package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/casegraph/internal/server/enrichment"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

const hunterMaxSources = 5

// Hunter verifies an email address and lists where it was seen.
type Hunter struct {
	base
}

func NewHunter(deps Deps) *Hunter {
	return &Hunter{base: newBase(deps, "Hunter", "HUNTER_API_KEY",
		"https://hunter.io/api", "https://api.hunter.io")}
}

type hunterResponse struct {
	Data struct {
		Status     string `json:"status"`
		Score      int    `json:"score"`
		Disposable bool   `json:"disposable"`
		Webmail    bool   `json:"webmail"`
		MXRecords  bool   `json:"mx_records"`
		Sources    []struct {
			Domain string `json:"domain"`
			URI    string `json:"uri"`
		} `json:"sources"`
	} `json:"data"`
}

func (h *Hunter) Enrich(ctx context.Context, entity *models.Entity, owner string) (*models.EnrichmentResult, error) {
	key, missing, err := h.apiKey(ctx, owner)
	if err != nil || missing != nil {
		return missing, err
	}

	email := strings.TrimSpace(entity.Name)
	q := url.Values{}
	q.Set("email", email)
	q.Set("api_key", key)
	resp, err := h.fetch(ctx, http.MethodGet, h.url("/v2/email-verifier", q), nil, nil)
	if err != nil {
		return nil, err
	}

	var data hunterResponse
	if err := resp.JSON(&data); err != nil {
		return nil, fmt.Errorf("%s: %w", h.name, err)
	}
	h.archive(ctx, entity, owner, resp.Body)

	d := data.Data
	if d.Status == "" {
		d.Status = "unknown"
	}

	facts := []enrichment.Fact{{
		Name: "Email Verification: " + d.Status,
		Kind: models.KindVerification,
		Description: fmt.Sprintf("Status: %s, Score: %d, Disposable: %t, Webmail: %t, MX Records: %t",
			d.Status, d.Score, d.Disposable, d.Webmail, d.MXRecords),
		Relation: "verified_as",
	}}

	if i := strings.LastIndex(email, "@"); i >= 0 && i < len(email)-1 {
		facts = append(facts, enrichment.Fact{
			Name:        email[i+1:],
			Kind:        models.KindDomain,
			Description: "Email domain from " + email,
			Relation:    "belongs_to",
		})
	}

	for _, src := range capped(d.Sources, hunterMaxSources) {
		if src.Domain == "" {
			continue
		}
		uri := src.URI
		if uri == "" {
			uri = "N/A"
		}
		facts = append(facts, enrichment.Fact{
			Name:        src.Domain,
			Kind:        models.KindSource,
			Description: "Found on: " + uri,
			Relation:    "found_on",
		})
	}

	l := enrichment.NewLinker(h.deps.Graph, entity, owner)
	if err := l.LinkAll(ctx, facts); err != nil {
		return nil, err
	}
	return l.Result(), nil
}
