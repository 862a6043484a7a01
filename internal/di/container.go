package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prohmpiriya/ticket-purchase/internal/gateway"
	"github.com/prohmpiriya/ticket-purchase/internal/handler"
	"github.com/prohmpiriya/ticket-purchase/internal/purchase"
	"github.com/prohmpiriya/ticket-purchase/internal/reservation"
	"github.com/prohmpiriya/ticket-purchase/pkg/config"
	"github.com/prohmpiriya/ticket-purchase/pkg/database"
	"github.com/prohmpiriya/ticket-purchase/pkg/kafka"
	"github.com/prohmpiriya/ticket-purchase/pkg/logger"
	pkgredis "github.com/prohmpiriya/ticket-purchase/pkg/redis"
)

// Container holds all dependencies for the purchase service
type Container struct {
	Config *config.Config
	Logger *logger.Logger

	// Infrastructure, nil unless a driver needs it
	Redis    *pkgredis.Client
	DB       *database.PostgresDB
	Producer *kafka.Producer

	// Collaborators
	PaymentService     purchase.PaymentService
	ReservationService purchase.SeatReservationService
	PaymentDriver      string
	ReservationDriver  string

	// Services
	Metrics   *purchase.Metrics
	Processor *purchase.Processor

	// Handlers
	HealthHandler   *handler.HealthHandler
	PriceHandler    *handler.PriceHandler
	PurchaseHandler *handler.PurchaseHandler

	healthChecks []handler.HealthCheck
	closers      []func()
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config *config.Config
	Logger *logger.Logger
}

// NewContainer connects the infrastructure selected by the configured
// drivers and builds the purchase processor and handlers. On error every
// connection opened so far is closed.
func NewContainer(ctx context.Context, cfg *ContainerConfig) (*Container, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	c := &Container{
		Config:            cfg.Config,
		Logger:            log,
		PaymentDriver:     cfg.Config.Payment.Driver,
		ReservationDriver: cfg.Config.Reservation.Driver,
	}

	if err := c.initInfrastructure(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.PaymentService = c.newPaymentService()

	reserver, err := c.newReservationService(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.ReservationService = reserver

	metrics, err := purchase.NewMetrics()
	if err != nil {
		log.Warn("Purchase metrics disabled", zap.Error(err))
	}
	c.Metrics = metrics

	c.Processor = purchase.NewProcessor(&purchase.ProcessorConfig{
		PaymentService:     c.PaymentService,
		ReservationService: c.ReservationService,
		Logger:             log,
		Metrics:            c.Metrics,
	})

	appCfg := cfg.Config.App
	c.HealthHandler = handler.NewHealthHandler(appCfg.Name, appCfg.Version, c.healthChecks...)
	c.PriceHandler = handler.NewPriceHandler(cfg.Config.Payment.Currency)
	c.PurchaseHandler = handler.NewPurchaseHandler(c.Processor, cfg.Config.Payment.Currency)

	log.Info("Purchase collaborators ready",
		zap.String("payment_driver", c.PaymentDriver),
		zap.String("reservation_driver", c.ReservationDriver),
	)

	return c, nil
}

func (c *Container) needsRedis() bool {
	return c.Config.Reservation.Driver == config.DriverRedis ||
		(c.Config.RateLimit.Enabled && c.Config.RateLimit.UseRedis)
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	if c.needsRedis() {
		client, err := pkgredis.NewClient(ctx, RedisConfig(&c.Config.Redis))
		if err != nil {
			return err
		}
		c.Redis = client
		c.healthChecks = append(c.healthChecks, handler.HealthCheck{Name: "redis", Check: client.Ping})
		c.Logger.Info("Connected to Redis", zap.String("addr", c.Config.Redis.Addr()))
	}

	if c.Config.Reservation.Driver == config.DriverPostgres {
		db, err := database.NewPostgres(ctx, PostgresConfig(&c.Config.Database))
		if err != nil {
			return err
		}
		c.DB = db
		c.healthChecks = append(c.healthChecks, handler.HealthCheck{Name: "postgres", Check: db.HealthCheck})
		c.Logger.Info("Connected to PostgreSQL", zap.String("host", c.Config.Database.Host))
	}

	if c.Config.Reservation.Driver == config.DriverKafka {
		producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
			Brokers:        c.Config.Kafka.Brokers,
			ClientID:       c.Config.Kafka.ClientID,
			DefaultTopic:   c.Config.Reservation.KafkaTopic,
			Linger:         kafka.DefaultProducerConfig().Linger,
			ProduceTimeout: kafka.DefaultProducerConfig().ProduceTimeout,
		})
		if err != nil {
			return err
		}
		c.Producer = producer
		c.healthChecks = append(c.healthChecks, handler.HealthCheck{Name: "kafka", Check: producer.Ping})
		c.Logger.Info("Connected to Kafka", zap.Strings("brokers", c.Config.Kafka.Brokers))
	}

	return nil
}

func (c *Container) newPaymentService() purchase.PaymentService {
	pc := c.Config.Payment
	base := gateway.Config{
		Currency:   pc.Currency,
		MinorUnits: gateway.DefaultConfig().MinorUnits,
	}

	switch pc.Driver {
	case config.DriverStripe:
		return gateway.NewStripeGateway(&gateway.StripeConfig{
			Config:    base,
			SecretKey: pc.StripeSecretKey,
			Logger:    c.Logger,
		})
	case config.DriverHTTP:
		return gateway.NewHTTPGateway(&gateway.HTTPConfig{
			Config:  base,
			BaseURL: pc.HTTPBaseURL,
			Timeout: pc.Timeout,
		})
	default:
		return purchase.NewMockPaymentService()
	}
}

func (c *Container) newReservationService(ctx context.Context) (purchase.SeatReservationService, error) {
	rc := c.Config.Reservation

	switch rc.Driver {
	case config.DriverRedis:
		reserver, err := reservation.NewRedisReserver(ctx, c.Redis, &reservation.RedisConfig{
			VenueID:        rc.VenueID,
			KeyPrefix:      rc.RedisKeyPrefix,
			ReservationTTL: rc.ReservationTTL,
			Logger:         c.Logger,
		})
		if err != nil {
			return nil, err
		}
		if rc.InitialSeats > 0 {
			seeded, err := reserver.SeedAvailability(ctx, rc.InitialSeats)
			if err != nil {
				return nil, fmt.Errorf("failed to seed venue availability: %w", err)
			}
			if !seeded {
				c.Logger.Info("Venue availability already initialized",
					zap.String("venue_id", rc.VenueID),
				)
			}
		}
		return reserver, nil
	case config.DriverPostgres:
		reserver := reservation.NewPostgresReserver(c.DB, &reservation.PostgresConfig{
			VenueID: rc.VenueID,
			Logger:  c.Logger,
		})
		if err := reserver.EnsureVenue(ctx, rc.InitialSeats); err != nil {
			return nil, err
		}
		return reserver, nil
	case config.DriverKafka:
		return reservation.NewKafkaReserver(c.Producer, &reservation.KafkaConfig{
			VenueID: rc.VenueID,
			Topic:   rc.KafkaTopic,
			Logger:  c.Logger,
		}), nil
	default:
		return purchase.NewMockSeatReservationService(), nil
	}
}

// OnClose registers fn to run when the container is closed, before the
// connections are released
func (c *Container) OnClose(fn func()) {
	c.closers = append(c.closers, fn)
}

// Close releases every connection held by the container
func (c *Container) Close() {
	for _, fn := range c.closers {
		fn()
	}
	c.closers = nil

	if c.Producer != nil {
		c.Producer.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
}

// RedisConfig maps the service configuration to the Redis client configuration
func RedisConfig(rc *config.RedisConfig) *pkgredis.Config {
	return &pkgredis.Config{
		Host:         rc.Host,
		Port:         rc.Port,
		Password:     rc.Password,
		DB:           rc.DB,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
	}
}

// PostgresConfig maps the service configuration to the pool configuration
func PostgresConfig(dc *config.DatabaseConfig) *database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = dc.Host
	pg.Port = dc.Port
	pg.User = dc.User
	pg.Password = dc.Password
	pg.Database = dc.DBName
	pg.SSLMode = dc.SSLMode
	pg.MaxConns = int32(dc.MaxConns)
	pg.MinConns = int32(dc.MinConns)
	if dc.ConnMaxLifetime > 0 {
		pg.MaxConnLifetime = dc.ConnMaxLifetime
	}
	if dc.ConnMaxIdleTime > 0 {
		pg.MaxConnIdleTime = dc.ConnMaxIdleTime
	}
	return pg
}
