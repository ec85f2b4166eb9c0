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

const virusTotalMaxNames = 3

// VirusTotal classifies a file hash from the engines' last analysis.
type VirusTotal struct {
	base
}

func NewVirusTotal(deps Deps) *VirusTotal {
	return &VirusTotal{base: newBase(deps, "VirusTotal", "VIRUSTOTAL_API_KEY",
		"https://www.virustotal.com/gui/my-apikey", "https://www.virustotal.com")}
}

type virusTotalFile struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats struct {
				Malicious  int `json:"malicious"`
				Suspicious int `json:"suspicious"`
				Harmless   int `json:"harmless"`
				Undetected int `json:"undetected"`
			} `json:"last_analysis_stats"`
			TypeDescription string   `json:"type_description"`
			Size            int64    `json:"size"`
			Names           []string `json:"names"`
		} `json:"attributes"`
	} `json:"data"`
}

func (v *VirusTotal) Enrich(ctx context.Context, entity *models.Entity, owner string) (*models.EnrichmentResult, error) {
	key, missing, err := v.apiKey(ctx, owner)
	if err != nil || missing != nil {
		return missing, err
	}

	hash := strings.TrimSpace(entity.Name)
	resp, err := v.fetch(ctx, http.MethodGet, v.url("/api/v3/files/"+url.PathEscape(hash), nil), nil,
		http.Header{"X-Apikey": {key}}, http.StatusNotFound)
	if err != nil {
		return nil, err
	}

	l := enrichment.NewLinker(v.deps.Graph, entity, owner)
	if resp.StatusCode == http.StatusNotFound {
		err := l.Link(ctx, enrichment.Fact{
			Name:        "Hash Not Found",
			Kind:        models.KindAnalysis,
			Description: fmt.Sprintf("Hash %s not found in VirusTotal database", hash),
			Relation:    "analyzed_as",
		})
		if err != nil {
			return nil, err
		}
		return l.Result(), nil
	}

	var file virusTotalFile
	if err := resp.JSON(&file); err != nil {
		return nil, fmt.Errorf("%s: %w", v.name, err)
	}
	v.archive(ctx, entity, owner, resp.Body)

	attrs := file.Data.Attributes
	stats := attrs.LastAnalysisStats

	verdict, kind := "clean", models.KindAnalysis
	switch {
	case stats.Malicious > 0:
		verdict, kind = "malicious", models.KindThreat
	case stats.Suspicious > 0:
		verdict = "suspicious"
	}

	facts := []enrichment.Fact{{
		Name: "VirusTotal: " + verdict,
		Kind: kind,
		Description: fmt.Sprintf("Malicious: %d, Suspicious: %d, Harmless: %d, Undetected: %d",
			stats.Malicious, stats.Suspicious, stats.Harmless, stats.Undetected),
		Relation: "analyzed_as",
	}}
	if attrs.TypeDescription != "" && attrs.TypeDescription != "Unknown" {
		facts = append(facts, enrichment.Fact{
			Name:        "File Type: " + attrs.TypeDescription,
			Kind:        models.KindMetadata,
			Description: fmt.Sprintf("Size: %d bytes", attrs.Size),
			Relation:    "has_metadata",
		})
	}
	for _, name := range capped(attrs.Names, virusTotalMaxNames) {
		facts = append(facts, enrichment.Fact{
			Name:        name,
			Kind:        models.KindFilename,
			Description: fmt.Sprintf("Known filename for hash %s...", truncate(hash, 16)),
			Relation:    "known_as",
		})
	}

	if err := l.LinkAll(ctx, facts); err != nil {
		return nil, err
	}
	return l.Result(), nil
}
