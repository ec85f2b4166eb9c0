package enrichment

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/casegraph/internal/common"
	"github.com/dmitrijs2005/casegraph/internal/logging"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T, reg Registry, graph *fakeGraph) (*Dispatcher, *Metrics) {
	t.Helper()
	m := NewMetrics(prometheus.NewRegistry())
	return NewDispatcher(reg, graph, m, nil), m
}

func ipRegistry() (Registry, *fakeAdapter, *fakeAdapter) {
	abuse := &fakeAdapter{name: "AbuseIPDB", credential: "ABUSEIPDB_API_KEY"}
	shodan := &fakeAdapter{name: "Shodan", credential: "SHODAN_API_KEY"}
	return Registry{models.KindIP: {abuse, shodan}}, abuse, shodan
}

func TestAvailableAdapters(t *testing.T) {
	reg, _, _ := ipRegistry()
	d, _ := newTestDispatcher(t, reg, newFakeGraph())

	want := []models.AdapterInfo{
		{Name: "AbuseIPDB", CredentialRequired: "ABUSEIPDB_API_KEY"},
		{Name: "Shodan", CredentialRequired: "SHODAN_API_KEY"},
	}
	assert.Equal(t, want, d.AvailableAdapters("ip"))
	assert.Equal(t, want, d.AvailableAdapters(" IP "), "kind is normalised")

	unknown := d.AvailableAdapters("unknown-kind")
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestRun_DefaultsToFirstAdapter(t *testing.T) {
	reg, abuse, shodan := ipRegistry()
	d, m := newTestDispatcher(t, reg, newFakeGraph())

	res, err := d.Run(context.Background(), &models.Entity{ID: 1, Kind: "IP", Name: "8.8.8.8"}, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "AbuseIPDB", res.Message)
	assert.Equal(t, 1, abuse.calls)
	assert.Zero(t, shodan.calls)

	_, err = uuid.Parse(abuse.gotRunID)
	assert.NoError(t, err, "adapter receives a run id")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("AbuseIPDB", OutcomeSuccess)))
}

func TestRun_LogsCarryRunID(t *testing.T) {
	reg, abuse, _ := ipRegistry()
	var buf bytes.Buffer
	log := logging.NewJSONLogger(&buf, slog.LevelDebug)
	d := NewDispatcher(reg, newFakeGraph(), NewMetrics(prometheus.NewRegistry()), log)

	_, err := d.Run(context.Background(), &models.Entity{ID: 1, Kind: "ip"}, "alice", "")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"enrichment finished"`)
	assert.Contains(t, out, `"run_id":"`+abuse.gotRunID+`"`)
}

func TestRun_SelectsAdapterCaseInsensitively(t *testing.T) {
	reg, abuse, shodan := ipRegistry()
	d, _ := newTestDispatcher(t, reg, newFakeGraph())

	_, err := d.Run(context.Background(), &models.Entity{ID: 1, Kind: "ip"}, "alice", "sHoDaN")
	require.NoError(t, err)
	assert.Zero(t, abuse.calls)
	assert.Equal(t, 1, shodan.calls)
}

func TestRun_UnknownAdapterIsSoft(t *testing.T) {
	reg, abuse, shodan := ipRegistry()
	d, m := newTestDispatcher(t, reg, newFakeGraph())

	res, err := d.Run(context.Background(), &models.Entity{ID: 1, Kind: "ip"}, "alice", "Censys")
	require.NoError(t, err)
	assert.Empty(t, res.Entities)
	assert.Empty(t, res.Relationships)
	assert.Contains(t, res.Message, "not found")
	assert.Zero(t, abuse.calls+shodan.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("unknown", OutcomeUnknownAdapter)))
}

func TestRun_UnknownAdapterNamesShareOneSeries(t *testing.T) {
	reg, _, _ := ipRegistry()
	d, m := newTestDispatcher(t, reg, newFakeGraph())

	for _, name := range []string{"Censys", "GreyNoise", "x-1", "x-2"} {
		_, err := d.Run(context.Background(), &models.Entity{ID: 1, Kind: "ip"}, "alice", name)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, testutil.CollectAndCount(m.runs))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.runs.WithLabelValues("unknown", OutcomeUnknownAdapter)))
}

func TestRun_NoCoverageIsSoft(t *testing.T) {
	reg, _, _ := ipRegistry()
	d, m := newTestDispatcher(t, reg, newFakeGraph())

	res, err := d.Run(context.Background(), &models.Entity{ID: 1, Kind: "unknown-kind"}, "alice", "")
	require.NoError(t, err)
	assert.Empty(t, res.Entities)
	assert.Equal(t, "No adapters for kind='unknown-kind'", res.Message)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("none", OutcomeNoCoverage)))
}

func TestRun_AdapterErrorPropagatesUnmodified(t *testing.T) {
	boom := errors.New("provider exploded")
	reg := Registry{models.KindHash: {&fakeAdapter{name: "VirusTotal", err: boom}}}
	d, m := newTestDispatcher(t, reg, newFakeGraph())

	_, err := d.Run(context.Background(), &models.Entity{ID: 1, Kind: "hash"}, "alice", "")
	assert.Same(t, boom, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("VirusTotal", OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestRun_ReturnsAdapterResultVerbatim(t *testing.T) {
	want := &models.EnrichmentResult{
		Entities:      []*models.Entity{{ID: 9}},
		Relationships: []*models.Relationship{{ID: 10}},
		Message:       "ok",
	}
	reg := Registry{models.KindEmail: {&fakeAdapter{name: "Hunter", result: want}}}
	d, _ := newTestDispatcher(t, reg, newFakeGraph())

	got, err := d.Run(context.Background(), &models.Entity{ID: 1, Kind: "email"}, "alice", "")
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestRunEntity(t *testing.T) {
	reg, abuse, _ := ipRegistry()
	graph := newFakeGraph(&models.Entity{ID: 1, CaseID: 1, Name: "8.8.8.8", Kind: "ip", Owner: "alice"})
	d, _ := newTestDispatcher(t, reg, graph)

	_, err := d.RunEntity(context.Background(), "alice", 1, "")
	require.NoError(t, err)
	assert.Equal(t, 1, abuse.calls)

	_, err = d.RunEntity(context.Background(), "bob", 1, "")
	assert.ErrorIs(t, err, common.ErrEntityNotFound)
	assert.Equal(t, 1, abuse.calls)
}

func TestRun_NilMetrics(t *testing.T) {
	reg, _, _ := ipRegistry()
	d := NewDispatcher(reg, newFakeGraph(), nil, nil)

	_, err := d.Run(context.Background(), &models.Entity{ID: 1, Kind: "ip"}, "alice", "")
	assert.NoError(t, err)
}
