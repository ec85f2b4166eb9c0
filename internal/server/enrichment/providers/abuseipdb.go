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

// AbuseIPDB reports the abuse confidence score of an IP address.
type AbuseIPDB struct {
	base
}

func NewAbuseIPDB(deps Deps) *AbuseIPDB {
	return &AbuseIPDB{base: newBase(deps, "AbuseIPDB", "ABUSEIPDB_API_KEY",
		"https://www.abuseipdb.com/account/api", "https://api.abuseipdb.com")}
}

type abuseIPDBResponse struct {
	Data struct {
		AbuseConfidenceScore int    `json:"abuseConfidenceScore"`
		CountryCode          string `json:"countryCode"`
		ISP                  string `json:"isp"`
	} `json:"data"`
}

func (a *AbuseIPDB) Enrich(ctx context.Context, entity *models.Entity, owner string) (*models.EnrichmentResult, error) {
	key, missing, err := a.apiKey(ctx, owner)
	if err != nil || missing != nil {
		return missing, err
	}

	q := url.Values{}
	q.Set("ipAddress", strings.TrimSpace(entity.Name))
	q.Set("maxAgeInDays", "90")
	resp, err := a.fetch(ctx, http.MethodGet, a.url("/api/v2/check", q), nil, http.Header{"Key": {key}})
	if err != nil {
		return nil, err
	}

	var data abuseIPDBResponse
	if err := resp.JSON(&data); err != nil {
		return nil, fmt.Errorf("%s: %w", a.name, err)
	}
	a.archive(ctx, entity, owner, resp.Body)

	country := data.Data.CountryCode
	if country == "" {
		country = "UNK"
	}
	isp := data.Data.ISP
	if isp == "" {
		isp = "Unknown ISP"
	}

	l := enrichment.NewLinker(a.deps.Graph, entity, owner)
	err = l.Link(ctx, enrichment.Fact{
		Name:        fmt.Sprintf("AbuseIPDB score=%d", data.Data.AbuseConfidenceScore),
		Kind:        models.KindThreat,
		Description: fmt.Sprintf("country=%s, isp=%s", country, isp),
		Relation:    "reported_as",
	})
	if err != nil {
		return nil, err
	}
	return l.Result(), nil
}
