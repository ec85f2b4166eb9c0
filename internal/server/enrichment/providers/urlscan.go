package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/casegraph/internal/netx"
	"github.com/dmitrijs2005/casegraph/internal/server/enrichment"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

const urlScanMaxIPs = 5

// sleep waits d or until ctx is done. It is a seam for tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// URLScan submits a URL for a private scan and polls for the verdict.
type URLScan struct {
	base
}

func NewURLScan(deps Deps) *URLScan {
	return &URLScan{base: newBase(deps, "URLScan", "URLSCAN_API_KEY",
		"https://urlscan.io/", "https://urlscan.io")}
}

type urlScanSubmission struct {
	UUID string `json:"uuid"`
}

type urlScanResult struct {
	Task struct {
		ScreenshotURL string `json:"screenshotURL"`
	} `json:"task"`
	Page struct {
		Status any    `json:"status"`
		Title  string `json:"title"`
		Server string `json:"server"`
	} `json:"page"`
	Verdicts struct {
		Overall struct {
			Malicious bool `json:"malicious"`
			Score     int  `json:"score"`
		} `json:"overall"`
	} `json:"verdicts"`
	Lists struct {
		IPs []string `json:"ips"`
	} `json:"lists"`
}

// splitTarget adds a default scheme and extracts the host of a URL entity.
func splitTarget(raw string) (target, host string) {
	target = strings.TrimSpace(raw)
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" {
		target = "http://" + target
		u, err = url.Parse(target)
	}
	if err == nil {
		host = u.Host
	}
	if host == "" {
		host, _, _ = strings.Cut(strings.TrimPrefix(target, "http://"), "/")
	}
	return target, host
}

func (s *URLScan) Enrich(ctx context.Context, entity *models.Entity, owner string) (*models.EnrichmentResult, error) {
	key, missing, err := s.apiKey(ctx, owner)
	if err != nil || missing != nil {
		return missing, err
	}

	l := enrichment.NewLinker(s.deps.Graph, entity, owner)

	target, host := splitTarget(entity.Name)
	if host != "" {
		err := l.Link(ctx, enrichment.Fact{
			Name:        host,
			Kind:        models.KindDomain,
			Description: "Extracted from URL: " + entity.Name,
			Relation:    "contains_domain",
		})
		if err != nil {
			return nil, err
		}
	}

	body, err := netx.JSONBody(map[string]string{"url": target, "visibility": "private"})
	if err != nil {
		return nil, err
	}
	resp, err := s.fetch(ctx, http.MethodPost, s.url("/api/v1/scan/", nil), body,
		http.Header{"Api-Key": {key}, "Content-Type": {"application/json"}})
	if err != nil {
		return nil, err
	}
	var sub urlScanSubmission
	if err := resp.JSON(&sub); err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	if sub.UUID == "" {
		return l.ResultWithMessage("URLScan submission failed"), nil
	}

	result, raw, err := s.poll(ctx, sub.UUID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		waited := time.Duration(s.deps.PollAttempts) * s.deps.PollInterval
		return l.ResultWithMessage(fmt.Sprintf(
			"URLScan result not ready after %s. Check: https://urlscan.io/result/%s/", waited, sub.UUID)), nil
	}
	s.archive(ctx, entity, owner, raw)

	overall := result.Verdicts.Overall
	verdict, kind := "Clean", models.KindAnalysis
	if overall.Malicious {
		verdict, kind = "MALICIOUS", models.KindThreat
	}

	facts := []enrichment.Fact{{
		Name: "URLScan: " + verdict,
		Kind: kind,
		Description: joinParts(
			fmt.Sprintf("Status: %v", statusOrZero(result.Page.Status)),
			iff(result.Page.Title != "", "Title: "+result.Page.Title),
			iff(result.Page.Server != "", "Server: "+result.Page.Server),
			fmt.Sprintf("Malicious: %t", overall.Malicious),
			fmt.Sprintf("Score: %d", overall.Score),
		),
		Relation: "scanned_as",
	}}
	if result.Task.ScreenshotURL != "" {
		facts = append(facts, enrichment.Fact{
			Name:        "URL Screenshot",
			Kind:        models.KindScreenshot,
			Description: result.Task.ScreenshotURL,
			Relation:    "visualized_as",
		})
	}
	for _, ip := range capped(uniqueInOrder(result.Lists.IPs), urlScanMaxIPs) {
		facts = append(facts, enrichment.Fact{
			Name:        ip,
			Kind:        models.KindIP,
			Description: "IP contacted by " + entity.Name,
			Relation:    "contacts",
		})
	}

	if err := l.LinkAll(ctx, facts); err != nil {
		return nil, err
	}
	return l.Result(), nil
}

// poll waits for the scan result. A nil result with nil error means the
// attempt budget ran out; 404 answers mean "not ready yet".
func (s *URLScan) poll(ctx context.Context, scanID string) (*urlScanResult, []byte, error) {
	for attempt := 0; attempt < s.deps.PollAttempts; attempt++ {
		if err := sleep(ctx, s.deps.PollInterval); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", s.name, err)
		}

		resp, err := s.fetch(ctx, http.MethodGet, s.url("/api/v1/result/"+url.PathEscape(scanID)+"/", nil),
			nil, nil, http.StatusNotFound)
		if err != nil {
			return nil, nil, err
		}
		if resp.StatusCode == http.StatusNotFound {
			s.logger.Debug(ctx, "scan result not ready", "attempt", attempt+1)
			continue
		}

		var result urlScanResult
		if err := resp.JSON(&result); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", s.name, err)
		}
		return &result, resp.Body, nil
	}
	return nil, nil, nil
}

func statusOrZero(v any) any {
	if v == nil {
		return 0
	}
	return v
}

func uniqueInOrder(xs []string) []string {
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}
