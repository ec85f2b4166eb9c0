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

// NumVerify validates a phone number and resolves its country and carrier.
type NumVerify struct {
	base
}

func NewNumVerify(deps Deps) *NumVerify {
	return &NumVerify{base: newBase(deps, "NumVerify", "NUMVERIFY_API_KEY",
		"https://numverify.com/", "http://apilayer.net")}
}

type numVerifyResponse struct {
	Valid               bool   `json:"valid"`
	CountryName         string `json:"country_name"`
	CountryCode         string `json:"country_code"`
	Location            string `json:"location"`
	Carrier             string `json:"carrier"`
	LineType            string `json:"line_type"`
	InternationalFormat string `json:"international_format"`

	// Set when the request was rejected (bad key, quota) even though the
	// status is 200.
	Error *struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
}

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// normalizePhone strips separators from a phone number.
func normalizePhone(s string) string {
	return phoneSeparators.Replace(strings.TrimSpace(s))
}

func (n *NumVerify) Enrich(ctx context.Context, entity *models.Entity, owner string) (*models.EnrichmentResult, error) {
	key, missing, err := n.apiKey(ctx, owner)
	if err != nil || missing != nil {
		return missing, err
	}

	phone := normalizePhone(entity.Name)
	q := url.Values{}
	q.Set("access_key", key)
	q.Set("number", phone)
	resp, err := n.fetch(ctx, http.MethodGet, n.url("/api/validate", q), nil, nil)
	if err != nil {
		return nil, err
	}

	var data numVerifyResponse
	if err := resp.JSON(&data); err != nil {
		return nil, fmt.Errorf("%s: %w", n.name, err)
	}
	if data.Error != nil {
		return nil, fmt.Errorf("%s: provider error %d (%s): %s", n.name, data.Error.Code, data.Error.Type, data.Error.Info)
	}
	n.archive(ctx, entity, owner, resp.Body)

	l := enrichment.NewLinker(n.deps.Graph, entity, owner)
	if !data.Valid {
		err := l.Link(ctx, enrichment.Fact{
			Name:        "Invalid Phone Number",
			Kind:        models.KindVerification,
			Description: fmt.Sprintf("Phone number %s is not valid", phone),
			Relation:    "verified_as",
		})
		if err != nil {
			return nil, err
		}
		return l.Result(), nil
	}

	country := data.CountryName
	if country == "" {
		country = "Unknown"
	}
	format := data.InternationalFormat
	if format == "" {
		format = phone
	}

	facts := []enrichment.Fact{{
		Name: fmt.Sprintf("Phone: Valid (%s)", data.LineType),
		Kind: models.KindVerification,
		Description: joinParts(
			fmt.Sprintf("Country: %s (%s)", country, data.CountryCode),
			iff(data.Location != "", "Location: "+data.Location),
			iff(data.Carrier != "", "Carrier: "+data.Carrier),
			iff(data.LineType != "", "Type: "+data.LineType),
			"Format: "+format,
		),
		Relation: "verified_as",
	}}
	if country != "Unknown" {
		facts = append(facts, enrichment.Fact{
			Name:        country,
			Kind:        models.KindLocation,
			Description: "Country code: " + data.CountryCode,
			Relation:    "located_in",
		})
	}
	if data.Carrier != "" {
		facts = append(facts, enrichment.Fact{
			Name:        data.Carrier,
			Kind:        models.KindOrganization,
			Description: "Phone carrier for " + format,
			Relation:    "provided_by",
		})
	}

	if err := l.LinkAll(ctx, facts); err != nil {
		return nil, err
	}
	return l.Result(), nil
}
