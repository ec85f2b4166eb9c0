package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/casegraph/internal/logging"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
	"github.com/google/uuid"
)

// Registry maps an entity kind to its adapters. The first adapter of a kind
// is the default.
type Registry map[models.Kind][]Adapter

// Dispatcher selects and runs adapters. It keeps no per-run state.
type Dispatcher struct {
	registry Registry
	entities EntityReader
	metrics  *Metrics
	logger   logging.Logger
	now      func() time.Time
}

// NewDispatcher builds a dispatcher. metrics may be nil.
func NewDispatcher(registry Registry, entities EntityReader, metrics *Metrics, logger logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Dispatcher{
		registry: registry,
		entities: entities,
		metrics:  metrics,
		logger:   logger.With("module", "enrichment"),
		now:      time.Now,
	}
}

// AvailableAdapters lists the adapters for kind in dispatch order. Unknown
// kinds yield an empty list.
func (d *Dispatcher) AvailableAdapters(kind string) []models.AdapterInfo {
	adapters := d.registry[models.ParseKind(kind)]
	infos := make([]models.AdapterInfo, 0, len(adapters))
	for _, a := range adapters {
		infos = append(infos, models.AdapterInfo{Name: a.Name(), CredentialRequired: a.Credential()})
	}
	return infos
}

// Run enriches entity with the adapter called adapterName, or with the
// default adapter of its kind when adapterName is empty. Missing coverage
// and unknown adapter names are reported in the result message.
func (d *Dispatcher) Run(ctx context.Context, entity *models.Entity, owner, adapterName string) (*models.EnrichmentResult, error) {
	kind := models.ParseKind(entity.Kind)
	log := d.logger.With("entity_id", entity.ID, "kind", string(kind))

	adapters := d.registry[kind]
	if len(adapters) == 0 {
		d.metrics.observe("none", OutcomeNoCoverage, 0)
		log.Info(ctx, "no adapters for kind")
		return models.NewMessageResult(fmt.Sprintf("No adapters for kind='%s'", entity.Kind)), nil
	}

	adapter := adapters[0]
	if name := strings.TrimSpace(adapterName); name != "" {
		adapter = nil
		for _, a := range adapters {
			if strings.EqualFold(a.Name(), name) {
				adapter = a
				break
			}
		}
		if adapter == nil {
			d.metrics.observe(unknownAdapterLabel, OutcomeUnknownAdapter, 0)
			log.Info(ctx, "adapter not found", "adapter", name)
			return models.NewMessageResult(fmt.Sprintf("Adapter '%s' not found for kind='%s'", name, kind)), nil
		}
	}

	ctx = WithRunID(ctx, uuid.NewString())
	log = log.With("adapter", adapter.Name())
	log.Debug(ctx, "enrichment started")

	start := d.now()
	result, err := adapter.Enrich(ctx, entity, owner)
	elapsed := d.now().Sub(start)
	if err != nil {
		d.metrics.observe(adapter.Name(), OutcomeError, elapsed)
		log.Error(ctx, "enrichment failed", "error", err, "elapsed", elapsed)
		return nil, err
	}

	d.metrics.observe(adapter.Name(), OutcomeSuccess, elapsed)
	log.Info(ctx, "enrichment finished",
		"entities", len(result.Entities),
		"relationships", len(result.Relationships),
		"message", result.Message,
		"elapsed", elapsed)
	return result, nil
}

// RunEntity resolves the entity through the graph store and runs it.
func (d *Dispatcher) RunEntity(ctx context.Context, owner string, entityID int64, adapterName string) (*models.EnrichmentResult, error) {
	entity, err := d.entities.GetEntity(ctx, owner, entityID)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, entity, owner, adapterName)
}
