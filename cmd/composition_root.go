package cmd

import (
	"log/slog"
	"time"

	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/directory"
	"fulfillment/internal/adapters/out/geo"
	"fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/lalamove"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters to use cases. Shared adapters (courier
// client, geocoder, notifier) are built once; handlers are built per call so
// each gets fresh unit-of-work instances.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	courier    ports.CourierClient
	geocoder   ports.Geocoder
	notifier   ports.Notifier
	drivers    ports.DriverDirectory
	calculator *services.ShippingFeeCalculator
	retryQueue *jobs.RetryQueue
	logger     *slog.Logger
}

// NewCompositionRoot builds the shared adapters from config.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	client, err := lalamove.NewClient(lalamove.Config{
		BaseURL:   cfg.LalamoveBaseURL,
		APIKey:    cfg.LalamoveAPIKey,
		APISecret: cfg.LalamoveAPISecret,
		Market:    cfg.LalamoveMarket,
	}, logger)
	if err != nil {
		return nil, err
	}

	courier := lalamove.NewRetryingClient(client, logger, lalamove.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	})

	var cache geo.Cache
	if cfg.RedisAddr != "" {
		cache = geo.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	geocoder, err := geo.NewGeocoder(geo.Config{
		BaseURL:     cfg.GeocoderBaseURL,
		UserAgent:   cfg.GeocoderUserAgent,
		CacheTTL:    cfg.GeocoderCacheTTL,
		MinInterval: cfg.GeocoderMinInterval,
	}, cache, logger)
	if err != nil {
		return nil, err
	}

	notifier, err := kafka.NewNotifier(cfg.KafkaBrokers, cfg.KafkaNotificationTopic, logger)
	if err != nil {
		return nil, err
	}

	drivers, err := directory.NewStaticDirectory(driverSeed())
	if err != nil {
		return nil, err
	}

	table := defaultRateTable()
	table.FreeShippingThreshold = cfg.FreeShippingThreshold

	calculator, err := services.NewShippingFeeCalculator(table, geocoder)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		courier:    courier,
		geocoder:   geocoder,
		notifier:   notifier,
		drivers:    drivers,
		calculator: calculator,
		retryQueue: jobs.NewRetryQueue(),
		logger:     logger,
	}, nil
}

// Courier exposes the shared courier client for startup tasks such as
// webhook registration.
func (c *CompositionRoot) Courier() ports.CourierClient {
	return c.courier
}

func (c *CompositionRoot) CreateCreateDeliveryCommandHandler() (commands.CreateDeliveryCommandHandler, error) {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateDeliveryCommandHandler(f)
}

func (c *CompositionRoot) CreateAssignDriverCommandHandler() (commands.AssignDriverCommandHandler, error) {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAssignDriverCommandHandler(f, c.drivers, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateRequestQuotationCommandHandler() (commands.RequestQuotationCommandHandler, error) {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRequestQuotationCommandHandler(f, c.geocoder, c.courier)
}

func (c *CompositionRoot) CreatePlaceCourierOrderCommandHandler() (commands.PlaceCourierOrderCommandHandler, error) {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewPlaceCourierOrderCommandHandler(f, c.courier, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateEditCourierOrderCommandHandler() (commands.EditCourierOrderCommandHandler, error) {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewEditCourierOrderCommandHandler(f, c.geocoder, c.courier)
}

func (c *CompositionRoot) CreateCancelDeliveryCommandHandler() (commands.CancelDeliveryCommandHandler, error) {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelDeliveryCommandHandler(f, c.courier, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateReconcileCourierStatusCommandHandler() (commands.ReconcileCourierStatusCommandHandler, error) {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewReconcileCourierStatusCommandHandler(f, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateRecordCourierDriverCommandHandler() (commands.RecordCourierDriverCommandHandler, error) {
	var f commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecordCourierDriverCommandHandler(f)
}

func (c *CompositionRoot) CreateTrackDeliveryQueryHandler() queries.TrackDeliveryQueryHandler {
	return queries.NewTrackDeliveryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetUserDeliveriesQueryHandler() queries.GetUserDeliveriesQueryHandler {
	return queries.NewGetUserDeliveriesQueryHandler(c.gormDB)
}

// CreateServer assembles the HTTP server over freshly built handlers.
func (c *CompositionRoot) CreateServer() (*httpin.Server, error) {
	createDelivery, err := c.CreateCreateDeliveryCommandHandler()
	if err != nil {
		return nil, err
	}

	assignDriver, err := c.CreateAssignDriverCommandHandler()
	if err != nil {
		return nil, err
	}

	requestQuotation, err := c.CreateRequestQuotationCommandHandler()
	if err != nil {
		return nil, err
	}

	placeOrder, err := c.CreatePlaceCourierOrderCommandHandler()
	if err != nil {
		return nil, err
	}

	editOrder, err := c.CreateEditCourierOrderCommandHandler()
	if err != nil {
		return nil, err
	}

	cancelDelivery, err := c.CreateCancelDeliveryCommandHandler()
	if err != nil {
		return nil, err
	}

	reconcile, err := c.CreateReconcileCourierStatusCommandHandler()
	if err != nil {
		return nil, err
	}

	webhook := httpin.NewWebhookReceiver(reconcile, c.retryQueue, c.logger)

	return httpin.NewServer(
		createDelivery,
		assignDriver,
		requestQuotation,
		placeOrder,
		editOrder,
		cancelDelivery,
		c.CreateTrackDeliveryQueryHandler(),
		c.CreateGetUserDeliveriesQueryHandler(),
		c.calculator,
		c.drivers,
		webhook,
	), nil
}

// CreateJobManager assembles the reconciliation poller and the webhook retry
// job over the shared retry queue.
func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	reconcile, err := c.CreateReconcileCourierStatusCommandHandler()
	if err != nil {
		return nil, err
	}

	recordDriver, err := c.CreateRecordCourierDriverCommandHandler()
	if err != nil {
		return nil, err
	}

	poller := jobs.NewReconciliationPollerJob(
		c.uowFactory.Create().DeliveryRepository(),
		c.courier,
		reconcile,
		recordDriver,
		c.logger,
	)
	retry := jobs.NewReconciliationRetryJob(c.retryQueue, reconcile, c.logger)

	return jobs.NewJobManager(poller, retry), nil
}

// driverSeed is the internal driver reference dataset for the manual
// assignment path.
func driverSeed() []directory.SeedEntry {
	return []directory.SeedEntry{
		{Name: "Juan Dela Cruz", Phone: "+639170000001", VehicleType: "motorcycle", PlateNumber: "ABC 1234"},
		{Name: "Maria Santos", Phone: "+639170000002", VehicleType: "sedan", PlateNumber: "XYZ 5678"},
		{Name: "Pedro Reyes", Phone: "+639170000003", VehicleType: "van", PlateNumber: "DEF 9012"},
	}
}

// defaultRateTable holds the shipping zone tiers and distance bands in PHP.
func defaultRateTable() services.RateTable {
	return services.RateTable{
		SameCityFee:     60,
		SameProvinceFee: 100,
		SameRegionFee:   150,
		DistanceBands: []services.DistanceBand{
			{UpToKm: 50, Fee: 180},
			{UpToKm: 200, Fee: 250},
			{UpToKm: 500, Fee: 380},
		},
		DefaultFee: 500,
	}
}

// FuncDeliveryUoWFactory adapts a plain function to commands.DeliveryUoWFactory.
type FuncDeliveryUoWFactory func() commands.DeliveryUoW

// Create calls f.
func (f FuncDeliveryUoWFactory) Create() commands.DeliveryUoW {
	return f()
}

// FuncUoWFactory adapts a plain function to commands.UoWFactory.
type FuncUoWFactory func() commands.UoW

// Create calls f.
func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
