package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/dmitrijs2005/casegraph/internal/netx"
	"github.com/dmitrijs2005/casegraph/internal/server/enrichment"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_KindsAndOrder(t *testing.T) {
	reg := NewRegistry(Deps{Graph: &fakeGraph{}, Vault: fakeVault{}})
	d := enrichment.NewDispatcher(reg, nil, nil, nil)

	assert.Equal(t, []models.AdapterInfo{
		{Name: "AbuseIPDB", CredentialRequired: "ABUSEIPDB_API_KEY"},
		{Name: "Shodan", CredentialRequired: "SHODAN_API_KEY"},
	}, d.AvailableAdapters("ip"))

	for kind, name := range map[string]string{
		"domain": "WhoisXML", "url": "URLScan", "hash": "VirusTotal", "email": "Hunter", "phone": "NumVerify",
	} {
		infos := d.AvailableAdapters(kind)
		require.Len(t, infos, 1, kind)
		assert.Equal(t, name, infos[0].Name)
		assert.Equal(t, strings.ToUpper(name)+"_API_KEY", infos[0].CredentialRequired)
	}
}

func TestMissingCredential_EveryAdapter(t *testing.T) {
	called := false
	f := newFixture(t, "none", "ip", "8.8.8.8", fakeVault{}, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	for kind, adapters := range NewRegistry(f.deps) {
		for _, a := range adapters {
			res, err := a.Enrich(context.Background(), &models.Entity{ID: 1, Kind: string(kind)}, "alice")
			require.NoError(t, err, a.Name())
			assert.Empty(t, res.Entities, a.Name())
			assert.Empty(t, res.Relationships, a.Name())
			assert.Contains(t, res.Message, "Missing "+a.Credential()+" in API vault. Get one at https://", a.Name())
		}
	}
	assert.False(t, called)
	assert.Empty(t, f.graph.entities)
}

func TestVaultFailurePropagates(t *testing.T) {
	a := NewHunter(Deps{Graph: &fakeGraph{}, Vault: fakeVault{}})
	_, err := a.Enrich(context.Background(), &models.Entity{ID: 1}, "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault offline")
}

func TestTransportErrorDoesNotLeakKey(t *testing.T) {
	a := NewShodan(Deps{
		Graph:     &fakeGraph{},
		Vault:     fakeVault{"SHODAN_API_KEY": "super-secret"},
		Endpoints: map[string]string{"shodan": "http://127.0.0.1:1"},
	})
	_, err := a.Enrich(context.Background(), &models.Entity{ID: 1, Name: "8.8.8.8"}, "alice")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "super-secret")
	assert.True(t, strings.HasPrefix(err.Error(), "Shodan: "))
}

func TestEndpointOverrideIsCaseInsensitive(t *testing.T) {
	d := Deps{Endpoints: map[string]string{"virustotal": "http://vt.local/"}}
	assert.Equal(t, "http://vt.local", d.endpoint("VirusTotal", "https://www.virustotal.com"))
	assert.Equal(t, "https://api.hunter.io", d.endpoint("Hunter", "https://api.hunter.io"))
}

func TestArchiveFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, "AbuseIPDB", "ip", "8.8.8.8", fakeVault{"ABUSEIPDB_API_KEY": "k"}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":{"abuseConfidenceScore":5}}`)
	})
	f.archive.err = errors.New("bucket gone")

	res, err := NewAbuseIPDB(f.deps).Enrich(context.Background(), f.subject, "alice")
	require.NoError(t, err)
	assert.Len(t, res.Entities, 1)
}

func TestStatusErrorIsReachable(t *testing.T) {
	f := newFixture(t, "Hunter", "email", "a@b.c", fakeVault{"HUNTER_API_KEY": "k"}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, `{"errors":[{"details":"rate limited"}]}`)
	})

	_, err := NewHunter(f.deps).Enrich(context.Background(), f.subject, "alice")
	var se *netx.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Empty(t, f.graph.entities)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "a, c", joinParts("a", "", "c"))
	assert.Equal(t, "", iff(false, "x"))
	assert.Equal(t, "2020-01-01", truncate("2020-01-01T00:00:00Z", 10))
	assert.Equal(t, []int{1, 2}, capped([]int{1, 2, 3}, 2))
	assert.Equal(t, []string{"b", "a"}, uniqueInOrder([]string{"b", "a", "b"}))
	assert.Equal(t, "+14155552671", normalizePhone(" +1 (415) 555-2671 "))
}
