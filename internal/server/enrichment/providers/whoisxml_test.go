package providers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhoisXML_FullRecord(t *testing.T) {
	f := newFixture(t, "WhoisXML", "domain", "evil.example", fakeVault{"WHOISXML_API_KEY": "wk"}, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/whoisserver/WhoisService", r.URL.Path)
		assert.Equal(t, "wk", q.Get("apiKey"))
		assert.Equal(t, "evil.example", q.Get("domainName"))
		assert.Equal(t, "JSON", q.Get("outputFormat"))
		writeJSON(w, 200, `{"WhoisRecord":{
			"registrarName":"NameCheap, Inc.",
			"createdDate":"2020-01-02T03:04:05Z",
			"expiresDate":"2030-01-02T03:04:05Z",
			"registrant":{"name":"Evil Corp","organization":"Evil Corp","country":"PA","email":"admin@evil.example"},
			"nameServers":{"hostNames":["ns1.evil","ns2.evil","ns3.evil","ns4.evil"]}
		}}`)
	})

	res, err := NewWhoisXML(f.deps).Enrich(context.Background(), f.subject, "alice")
	require.NoError(t, err)
	assertAnchored(t, f.subject, res)

	require.Len(t, res.Entities, 6)
	assert.Equal(t, "WHOIS: NameCheap, Inc.", res.Entities[0].Name)
	assert.Equal(t, "whois", res.Entities[0].Kind)
	assert.Equal(t, "Registrar: NameCheap, Inc., Created: 2020-01-02, Expires: 2030-01-02", *res.Entities[0].Description)

	assert.Equal(t, "organization", res.Entities[1].Kind)
	assert.Equal(t, "Country: PA", *res.Entities[1].Description)

	rels := relationsByName(t, res)
	assert.Equal(t, "registered_with", rels["WHOIS: NameCheap, Inc."])
	assert.Equal(t, "registered_by", rels["Evil Corp"])
	assert.Equal(t, "contact_email", rels["admin@evil.example"])
	assert.Equal(t, "uses_nameserver", rels["ns3.evil"])
	_, fourth := rels["ns4.evil"]
	assert.False(t, fourth)
}

func TestWhoisXML_PrivacyEmailAndPersonRegistrant(t *testing.T) {
	f := newFixture(t, "WhoisXML", "domain", "example.org", fakeVault{"WHOISXML_API_KEY": "wk"}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"WhoisRecord":{"registrant":{"name":"John Doe","email":"contact@PrivacyGuard.example"}}}`)
	})

	res, err := NewWhoisXML(f.deps).Enrich(context.Background(), f.subject, "alice")
	require.NoError(t, err)
	require.Len(t, res.Entities, 2)
	assert.Equal(t, "WHOIS: Unknown", res.Entities[0].Name)
	assert.Equal(t, "John Doe", res.Entities[1].Name)
	assert.Equal(t, "person", res.Entities[1].Kind)
	assert.Nil(t, res.Entities[1].Description)
}
