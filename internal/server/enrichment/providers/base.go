// Package providers holds the adapters for the external intelligence
// services. Each adapter issues one lookup keyed by the subject entity's
// name and links what it learns back to that entity.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/casegraph/internal/common"
	"github.com/dmitrijs2005/casegraph/internal/logging"
	"github.com/dmitrijs2005/casegraph/internal/netx"
	"github.com/dmitrijs2005/casegraph/internal/server/archive"
	"github.com/dmitrijs2005/casegraph/internal/server/enrichment"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
	"github.com/google/uuid"
)

// Deps are the collaborators shared by every adapter.
type Deps struct {
	Graph   enrichment.GraphWriter
	Vault   enrichment.Vault
	Archive archive.Archiver
	Client  *http.Client
	Logger  logging.Logger

	// Endpoints overrides the base URL of an adapter, keyed by adapter name
	// (case-insensitive).
	Endpoints map[string]string

	PollAttempts int
	PollInterval time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Archive == nil {
		d.Archive = archive.NewNop()
	}
	if d.Client == nil {
		d.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	if d.PollAttempts <= 0 {
		d.PollAttempts = 6
	}
	if d.PollInterval <= 0 {
		d.PollInterval = 10 * time.Second
	}
	return d
}

func (d Deps) endpoint(name, fallback string) string {
	for k, v := range d.Endpoints {
		if strings.EqualFold(k, name) && v != "" {
			return strings.TrimRight(v, "/")
		}
	}
	return fallback
}

type base struct {
	name       string
	credential string
	signupURL  string
	baseURL    string
	deps       Deps
	logger     logging.Logger
}

func newBase(deps Deps, name, credential, signupURL, defaultURL string) base {
	deps = deps.withDefaults()
	return base{
		name:       name,
		credential: credential,
		signupURL:  signupURL,
		baseURL:    deps.endpoint(name, defaultURL),
		deps:       deps,
		logger:     deps.Logger.With("module", "providers", "adapter", name),
	}
}

func (b *base) Name() string       { return b.name }
func (b *base) Credential() string { return b.credential }

// apiKey resolves the adapter credential. When it is not configured the
// returned result carries the missing credential message and key is empty.
func (b *base) apiKey(ctx context.Context, owner string) (string, *models.EnrichmentResult, error) {
	key, ok, err := b.deps.Vault.FindActiveCredential(ctx, owner, b.credential)
	if err != nil {
		return "", nil, fmt.Errorf("%s: resolving credential: %w", b.name, err)
	}
	if !ok {
		return "", models.NewMessageResult(fmt.Sprintf(common.MissingCredentialFormat, b.credential, b.signupURL)), nil
	}
	return key, nil, nil
}

func (b *base) url(path string, query url.Values) string {
	u := b.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// fetch performs one exchange. Statuses in accept are returned instead of
// failing. Transport errors drop the request URL since it may carry the key.
func (b *base) fetch(ctx context.Context, method, rawURL string, body io.Reader, header http.Header, accept ...int) (*netx.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", b.name, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := netx.Do(b.deps.Client, req, accept...)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			err = fmt.Errorf("%s %s: %w", ue.Op, req.URL.Host, ue.Err)
		}
		return nil, fmt.Errorf("%s: %w", b.name, err)
	}
	return resp, nil
}

// archive stores a raw response body. Failures are logged only.
func (b *base) archive(ctx context.Context, subject *models.Entity, owner string, body []byte) {
	runID := enrichment.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = enrichment.WithRunID(ctx, runID)
	}
	err := b.deps.Archive.Store(ctx, archive.Object{
		Adapter:  b.name,
		Owner:    owner,
		EntityID: subject.ID,
		RunID:    runID,
		Body:     body,
	})
	if err != nil {
		b.logger.Warn(ctx, "archiving provider response failed", "error", err)
	}
}

// joinParts joins the non-empty parts with ", ".
func joinParts(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// iff returns s when cond holds, else "".
func iff(cond bool, s string) string {
	if cond {
		return s
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func capped[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
