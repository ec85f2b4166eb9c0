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

const (
	shodanMaxPorts     = 10
	shodanMaxHostnames = 5
	shodanMaxVulns     = 5
)

// Shodan describes the exposed services of an IP address.
type Shodan struct {
	base
}

func NewShodan(deps Deps) *Shodan {
	return &Shodan{base: newBase(deps, "Shodan", "SHODAN_API_KEY",
		"https://shodan.io/", "https://api.shodan.io")}
}

type shodanHost struct {
	Org         string   `json:"org"`
	ASN         string   `json:"asn"`
	ISP         string   `json:"isp"`
	CountryName string   `json:"country_name"`
	City        string   `json:"city"`
	OS          string   `json:"os"`
	Ports       []int    `json:"ports"`
	Hostnames   []string `json:"hostnames"`
	Vulns       []string `json:"vulns"`
}

func (s *Shodan) Enrich(ctx context.Context, entity *models.Entity, owner string) (*models.EnrichmentResult, error) {
	key, missing, err := s.apiKey(ctx, owner)
	if err != nil || missing != nil {
		return missing, err
	}

	ip := strings.TrimSpace(entity.Name)
	q := url.Values{}
	q.Set("key", key)
	resp, err := s.fetch(ctx, http.MethodGet, s.url("/shodan/host/"+url.PathEscape(ip), q), nil, nil, http.StatusNotFound)
	if err != nil {
		return nil, err
	}

	l := enrichment.NewLinker(s.deps.Graph, entity, owner)
	if resp.StatusCode == http.StatusNotFound {
		err := l.Link(ctx, enrichment.Fact{
			Name:        "Shodan: No data",
			Kind:        models.KindAnalysis,
			Description: fmt.Sprintf("IP %s not found in Shodan database", ip),
			Relation:    "scanned_by",
		})
		if err != nil {
			return nil, err
		}
		return l.Result(), nil
	}

	var host shodanHost
	if err := resp.JSON(&host); err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	s.archive(ctx, entity, owner, resp.Body)

	if host.Org == "" {
		host.Org = "Unknown"
	}
	location := ""
	switch {
	case host.City != "":
		location = fmt.Sprintf("Location: %s, %s", host.City, host.CountryName)
	case host.CountryName != "":
		location = "Country: " + host.CountryName
	}

	facts := []enrichment.Fact{{
		Name: "Shodan: " + host.Org,
		Kind: models.KindAnalysis,
		Description: joinParts(
			"Org: "+host.Org,
			iff(host.ASN != "", "ASN: "+host.ASN),
			iff(host.ISP != "", "ISP: "+host.ISP),
			location,
			iff(host.OS != "", "OS: "+host.OS),
			fmt.Sprintf("Open ports: %d", len(host.Ports)),
		),
		Relation: "scanned_by",
	}}
	for _, port := range capped(host.Ports, shodanMaxPorts) {
		facts = append(facts, enrichment.Fact{
			Name:        fmt.Sprintf("Port %d", port),
			Kind:        models.KindPort,
			Description: "Open port on " + ip,
			Relation:    "exposes",
		})
	}
	for _, hostname := range capped(host.Hostnames, shodanMaxHostnames) {
		facts = append(facts, enrichment.Fact{
			Name:        hostname,
			Kind:        models.KindDomain,
			Description: "Hostname for " + ip,
			Relation:    "has_hostname",
		})
	}
	for _, vuln := range capped(host.Vulns, shodanMaxVulns) {
		facts = append(facts, enrichment.Fact{
			Name:        vuln,
			Kind:        models.KindVulnerability,
			Description: "CVE detected on " + ip,
			Relation:    "vulnerable_to",
		})
	}

	if err := l.LinkAll(ctx, facts); err != nil {
		return nil, err
	}
	return l.Result(), nil
}
