package refresh

import (
	"context"
	"errors"

	"github.com/roylee0704/gron"

	"labdash/internal/backend"
	"labdash/internal/hub"
	"labdash/internal/models"
	"labdash/internal/providers"
	"labdash/internal/refresh/interfaces"
	"labdash/internal/structures"
)

var ErrActivityNotFound = errors.New("activity not found in store")

// Refresh triggers, used as the metric label.
const (
	TriggerInitial  = "initial"
	TriggerHub      = "hub"
	TriggerInterval = "interval"
)

// Coordinator keeps the activity store and option catalog eventually
// consistent with the backend: concurrent initial load, wholesale
// refetch on hub pushes, and a periodic fallback sweep for pushes
// missed while the hub was down. Filter state lives with the request
// that carries it, so a refresh can never reset it.
type Coordinator struct {
	conf    *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	backend backend.ClientInterface
	hub     hub.HubClientInterface
	store   *models.ActivityStore
	catalog *models.Catalog

	cron   *gron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func NewCoordinator(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, client backend.ClientInterface, hubClient hub.HubClientInterface, store *models.ActivityStore, catalog *models.Catalog) interfaces.CoordinatorInterface {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		conf:    conf,
		logger:  logger,
		metrics: metrics,
		backend: client,
		hub:     hubClient,
		store:   store,
		catalog: catalog,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (c *Coordinator) Init() error {
	if err := c.backend.Login(c.ctx); err != nil {
		return err
	}

	// Catalog and activity fetches are independent reads; neither
	// blocks the other, and each applies whenever it lands.
	go c.loadCatalog()
	go func() {
		_ = c.Refresh(c.ctx, TriggerInitial)
	}()

	c.hub.Start(c.backend.Token(), c.handleHubEvent)

	c.cron = gron.New()
	c.cron.AddFunc(gron.Every(c.conf.Refresh.Interval), func() {
		_ = c.Refresh(c.ctx, TriggerInterval)
	})
	c.cron.Start()

	return nil
}

func (c *Coordinator) Stop() {
	c.cancel()
	if c.cron != nil {
		c.cron.Stop()
	}
	c.hub.Close()
	c.store.Close()
	c.logger.Infof(providers.TypeApp, "Refresh coordinator stopped")
}

// Refresh refetches the whole activity list and replaces the store.
// Wholesale replace, not incremental patch: hub events carry no
// payload that could merge a single record safely, so correctness
// wins over efficiency at these volumes. The generation issued before
// the fetch fences out responses overtaken by a newer refresh.
func (c *Coordinator) Refresh(ctx context.Context, trigger string) error {
	gen := c.store.NextGeneration()

	records, err := c.backend.FetchActivities(ctx)
	if err != nil {
		c.logger.Errorf(providers.TypeBackend, "Activity refresh (%s) failed: %s", trigger, err)
		return err
	}

	if !c.store.Replace(gen, records) {
		c.metrics.IncStaleDrops()
		c.logger.Debugf(providers.TypeApp, "Dropped stale activity snapshot (generation %d)", gen)
		return nil
	}

	c.metrics.IncRefreshes(trigger)
	c.logger.Infof(providers.TypeApp, "Activity store replaced: %d records (%s)", len(records), trigger)
	return nil
}

// DeleteActivity removes the record locally first for responsiveness,
// then asks the backend. A failed backend call restores the record at
// its original position so the mirror never silently diverges.
func (c *Coordinator) DeleteActivity(ctx context.Context, id models.FlexID) error {
	rec, idx, ok := c.store.Remove(id)
	if !ok {
		return ErrActivityNotFound
	}

	if err := c.backend.DeleteActivity(ctx, id); err != nil {
		c.store.Restore(rec, idx)
		c.logger.Errorf(providers.TypeBackend, "Delete of activity %s failed, restored locally: %s", id, err)
		return err
	}

	c.logger.Infof(providers.TypeApp, "Activity %s deleted", id)
	return nil
}

func (c *Coordinator) loadCatalog() {
	type fetch struct {
		name  string
		load  func(context.Context) ([]models.OptionEntry, error)
		apply func([]models.OptionEntry)
	}

	fetches := []fetch{
		{"labs", c.backend.FetchLabs, c.catalog.SetLabs},
		{"classes", c.backend.FetchClasses, c.catalog.SetClasses},
		{"users", c.backend.FetchUsers, c.catalog.SetUsers},
	}

	for _, f := range fetches {
		go func(f fetch) {
			entries, err := f.load(c.ctx)
			if err != nil {
				c.logger.Errorf(providers.TypeBackend, "Catalog load (%s) failed: %s", f.name, err)
				return
			}
			f.apply(entries)
			c.logger.Infof(providers.TypeApp, "Catalog %s loaded: %d entries", f.name, len(entries))
		}(f)
	}
}

func (c *Coordinator) handleHubEvent(event string) {
	switch event {
	case hub.EventCheckIn, hub.EventCheckOut:
		_ = c.Refresh(c.ctx, TriggerHub)
	default:
		c.logger.Debugf(providers.TypeHub, "Ignoring hub event %s", event)
	}
}
