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

const whoisMaxNameServers = 3

// WhoisXML resolves the registration record of a domain.
type WhoisXML struct {
	base
}

func NewWhoisXML(deps Deps) *WhoisXML {
	return &WhoisXML{base: newBase(deps, "WhoisXML", "WHOISXML_API_KEY",
		"https://whois.whoisxmlapi.com/", "https://www.whoisxmlapi.com")}
}

type whoisResponse struct {
	WhoisRecord struct {
		RegistrarName string `json:"registrarName"`
		CreatedDate   string `json:"createdDate"`
		ExpiresDate   string `json:"expiresDate"`
		UpdatedDate   string `json:"updatedDate"`
		Registrant    struct {
			Name         string `json:"name"`
			Organization string `json:"organization"`
			Country      string `json:"country"`
			Email        string `json:"email"`
		} `json:"registrant"`
		NameServers struct {
			HostNames []string `json:"hostNames"`
		} `json:"nameServers"`
	} `json:"WhoisRecord"`
}

func (w *WhoisXML) Enrich(ctx context.Context, entity *models.Entity, owner string) (*models.EnrichmentResult, error) {
	key, missing, err := w.apiKey(ctx, owner)
	if err != nil || missing != nil {
		return missing, err
	}

	domain := strings.TrimSpace(entity.Name)
	q := url.Values{}
	q.Set("apiKey", key)
	q.Set("domainName", domain)
	q.Set("outputFormat", "JSON")
	resp, err := w.fetch(ctx, http.MethodGet, w.url("/whoisserver/WhoisService", q), nil, nil)
	if err != nil {
		return nil, err
	}

	var data whoisResponse
	if err := resp.JSON(&data); err != nil {
		return nil, fmt.Errorf("%s: %w", w.name, err)
	}
	w.archive(ctx, entity, owner, resp.Body)

	rec := data.WhoisRecord
	registrar := rec.RegistrarName
	if registrar == "" {
		registrar = "Unknown"
	}

	facts := []enrichment.Fact{{
		Name: "WHOIS: " + registrar,
		Kind: models.KindWhois,
		Description: joinParts(
			"Registrar: "+registrar,
			iff(rec.CreatedDate != "", "Created: "+truncate(rec.CreatedDate, 10)),
			iff(rec.ExpiresDate != "", "Expires: "+truncate(rec.ExpiresDate, 10)),
			iff(rec.UpdatedDate != "", "Updated: "+truncate(rec.UpdatedDate, 10)),
		),
		Relation: "registered_with",
	}}

	reg := rec.Registrant
	registrantName := reg.Name
	if registrantName == "" {
		registrantName = reg.Organization
	}
	if registrantName != "" {
		kind := models.KindPerson
		if reg.Organization != "" {
			kind = models.KindOrganization
		}
		facts = append(facts, enrichment.Fact{
			Name:        registrantName,
			Kind:        kind,
			Description: iff(reg.Country != "", "Country: "+reg.Country),
			Relation:    "registered_by",
		})
	}

	if strings.Contains(reg.Email, "@") && !strings.Contains(strings.ToLower(reg.Email), "privacy") {
		facts = append(facts, enrichment.Fact{
			Name:        reg.Email,
			Kind:        models.KindEmail,
			Description: "Registrant email for " + domain,
			Relation:    "contact_email",
		})
	}

	for _, ns := range capped(rec.NameServers.HostNames, whoisMaxNameServers) {
		facts = append(facts, enrichment.Fact{
			Name:        ns,
			Kind:        models.KindNameserver,
			Description: "Name server for " + domain,
			Relation:    "uses_nameserver",
		})
	}

	l := enrichment.NewLinker(w.deps.Graph, entity, owner)
	if err := l.LinkAll(ctx, facts); err != nil {
		return nil, err
	}
	return l.Result(), nil
}
