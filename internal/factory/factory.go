package factory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"radius-admin/internal/audit"
	"radius-admin/internal/bucketing"
	"radius-admin/internal/client"
	"radius-admin/internal/config"
	"radius-admin/internal/encryption"
	"radius-admin/internal/hashing"
	"radius-admin/internal/models"
	"radius-admin/internal/ratelimit"
	repopg "radius-admin/internal/repository/postgres"
	reporedis "radius-admin/internal/repository/redis"
	"radius-admin/internal/service"
	"radius-admin/internal/session"
	"radius-admin/internal/sysinfo"
	tlsmgr "radius-admin/internal/tls"
	"radius-admin/internal/util"
)

// Version reported by the system endpoint.
const Version = "1.2.0"

// managedServices are the host services the system page probes.
var managedServices = []string{"freeradius", "postgresql"}

// Factory builds and owns every long-lived component. Postgres and
// Redis are required; ClickHouse, Kafka and Elasticsearch degrade to
// warnings so the panel stays usable when the observability side is
// down.
type Factory struct {
	config *config.Config
	logger *zap.Logger

	tlsManager       *tlsmgr.Manager
	postgresClient   *client.PostgresClient
	redisClient      *client.RedisClient
	clickhouseClient *client.ClickHouseClient
	kafkaProducer    *client.KafkaProducer
	esClient         *client.ESClient

	hasher            *hashing.Hasher
	encryptionManager *encryption.Manager
	bucketingManager  *bucketing.Manager
	sessionManager    *session.Manager
	rateLimiter       *ratelimit.Limiter
	auditRecorder     *audit.Recorder
	fileSink          *audit.FileSink
	clickhouseSink    *audit.ClickHouseSink
	esSink            *audit.ESSink

	adminRepo      *repopg.AdminRepository
	subscriberRepo *repopg.SubscriberRepository
	settingsRepo   *repopg.SettingsRepository

	serviceFactory *service.ServiceFactory

	closeOnce sync.Once
}

func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()
	logger := util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	f := &Factory{
		config: cfg,
		logger: logger,
	}

	f.tlsManager = tlsmgr.NewManager(cfg)

	if err := f.initializeClients(); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.initializeCore(); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.initializeStorage(); err != nil {
		f.Close()
		return nil, err
	}
	f.initializeServices()

	util.Info("Factory initialized",
		zap.String("environment", cfg.Environment),
		zap.String("version", Version))
	return f, nil
}

func (f *Factory) initializeClients() error {
	var err error

	f.postgresClient, err = client.NewPostgresClient(f.config, f.logger)
	if err != nil {
		return fmt.Errorf("postgres initialization failed: %w", err)
	}

	f.redisClient, err = client.NewRedisClient(f.config, f.logger)
	if err != nil {
		if f.config.IsProduction() {
			return fmt.Errorf("redis initialization failed: %w", err)
		}
		util.Warn("Redis unavailable, using in-memory session and rate-limit stores", zap.Error(err))
		f.redisClient = nil
	}

	f.clickhouseClient, err = client.NewClickHouseClient(f.config, f.logger)
	if err != nil {
		if f.config.IsProduction() {
			return fmt.Errorf("clickhouse initialization failed: %w", err)
		}
		util.Warn("ClickHouse unavailable, audit review disabled", zap.Error(err))
		f.clickhouseClient = nil
	}

	if f.config.Kafka.Enabled {
		f.kafkaProducer, err = client.NewKafkaProducer(f.config, f.logger)
		if err != nil {
			util.Warn("Kafka unavailable, SIEM forwarding disabled", zap.Error(err))
			f.kafkaProducer = nil
		}
	}

	if f.config.Elasticsearch.Enabled {
		f.esClient, err = client.NewElasticsearchClient(f.config, f.logger)
		if err != nil {
			util.Warn("Elasticsearch unavailable, audit search disabled", zap.Error(err))
			f.esClient = nil
		}
	}

	return nil
}

func (f *Factory) initializeCore() error {
	var err error

	f.hasher, err = hashing.NewHasher(f.config)
	if err != nil {
		return fmt.Errorf("hasher initialization failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	f.encryptionManager, err = encryption.NewManager(ctx, f.config)
	if err != nil {
		return fmt.Errorf("encryption initialization failed: %w", err)
	}

	f.bucketingManager = bucketing.NewManager(f.config)

	if f.redisClient != nil {
		f.sessionManager = session.NewManager(
			reporedis.NewSessionStore(f.redisClient),
			f.config.Session.IdleTimeout)
		f.rateLimiter = ratelimit.NewLimiter(
			reporedis.NewCounterStore(f.redisClient, f.bucketingManager),
			f.config.RateLimit.Window,
			f.config.RateLimit.MaxAttempts)
	} else {
		f.sessionManager = session.NewManager(
			session.NewMemoryStore(),
			f.config.Session.IdleTimeout)
		f.rateLimiter = ratelimit.NewLimiter(
			ratelimit.NewMemoryCounterStore(),
			f.config.RateLimit.Window,
			f.config.RateLimit.MaxAttempts)
	}

	var sinks []audit.Sink

	f.fileSink, err = audit.NewFileSink(f.config.Audit.FilePath)
	if err != nil {
		if f.config.IsProduction() {
			return fmt.Errorf("audit file sink initialization failed: %w", err)
		}
		util.Warn("Audit file sink unavailable", zap.Error(err))
		f.fileSink = nil
	} else {
		sinks = append(sinks, f.fileSink)
	}

	if f.clickhouseClient != nil {
		f.clickhouseSink, err = audit.NewClickHouseSink(ctx, f.clickhouseClient,
			f.config.Audit.RetentionDays, f.config.Audit.MaxPageSize)
		if err != nil {
			return fmt.Errorf("audit clickhouse sink initialization failed: %w", err)
		}
		sinks = append(sinks, f.clickhouseSink)
	}

	if f.kafkaProducer != nil {
		sinks = append(sinks, audit.NewKafkaSink(f.kafkaProducer, f.config.Kafka.AuditTopic))
	}

	if f.esClient != nil {
		f.esSink = audit.NewESSink(f.esClient, f.config.Elasticsearch.AuditIndex, f.bucketingManager)
		sinks = append(sinks, f.esSink)
	}

	if len(sinks) == 0 {
		return fmt.Errorf("no audit sink available, refusing to run without an audit trail")
	}

	f.auditRecorder = audit.NewRecorder(f.bucketingManager, sinks...)
	return nil
}

func (f *Factory) initializeStorage() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := repopg.EnsureSchema(ctx, f.postgresClient); err != nil {
		return err
	}

	f.adminRepo = repopg.NewAdminRepository(f.postgresClient)
	f.subscriberRepo = repopg.NewSubscriberRepository(f.postgresClient)
	f.settingsRepo = repopg.NewSettingsRepository(f.postgresClient)

	return f.bootstrapAdmin(ctx)
}

// bootstrapAdmin creates the first operator account on an empty
// install. Without it there is no way to log in at all.
func (f *Factory) bootstrapAdmin(ctx context.Context) error {
	count, err := f.adminRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admin accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	if f.config.Admin.BootstrapPassword == "" {
		util.Warn("No admin accounts exist and ADMIN_BOOTSTRAP_PASSWORD is unset, login is impossible")
		return nil
	}

	result, err := f.hasher.HashPassword(f.config.Admin.BootstrapPassword)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	admin := &models.AdminUser{
		Username:      f.config.Admin.BootstrapUser,
		PasswordHash:  result.Hash,
		PasswordSalt:  result.Salt,
		PepperVersion: result.PepperVersion,
		Algorithm:     result.Algorithm,
		CreatedAt:     time.Now().UTC(),
	}
	if err := f.adminRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	util.Info("Bootstrap admin account created",
		zap.String("username", admin.Username))
	return nil
}

func (f *Factory) initializeServices() {
	var (
		reader   audit.Reader
		searcher audit.Searcher
	)
	if f.clickhouseSink != nil {
		reader = f.clickhouseSink
	}
	if f.esSink != nil {
		searcher = f.esSink
	}

	var prober sysinfo.Prober = sysinfo.NewSystemdProber()

	f.serviceFactory = service.NewServiceFactory(service.Deps{
		Config:        f.config,
		Version:       Version,
		Services:      managedServices,
		Admins:        f.adminRepo,
		Subscribers:   f.subscriberRepo,
		Settings:      f.settingsRepo,
		Hasher:        f.hasher,
		Encryption:    f.encryptionManager,
		Sessions:      f.sessionManager,
		Limiter:       f.rateLimiter,
		Recorder:      f.auditRecorder,
		AuditReader:   reader,
		AuditSearcher: searcher,
		Health:        f,
		Prober:        prober,
	})
}

func (f *Factory) Config() *config.Config                  { return f.config }
func (f *Factory) TLSManager() *tlsmgr.Manager             { return f.tlsManager }
func (f *Factory) SessionManager() *session.Manager        { return f.sessionManager }
func (f *Factory) AuditRecorder() *audit.Recorder          { return f.auditRecorder }
func (f *Factory) ServiceFactory() *service.ServiceFactory { return f.serviceFactory }

// HealthCheck pings every configured backing component.
func (f *Factory) HealthCheck(ctx context.Context) map[string]error {
	results := make(map[string]error)

	results["postgres"] = f.postgresClient.HealthCheck(ctx)

	if f.redisClient != nil {
		results["redis"] = f.redisClient.HealthCheck(ctx)
	}
	if f.clickhouseClient != nil {
		results["clickhouse"] = f.clickhouseClient.HealthCheck(ctx)
	}
	if f.kafkaProducer != nil {
		results["kafka"] = f.kafkaProducer.HealthCheck(ctx)
	}
	if f.esClient != nil {
		results["elasticsearch"] = f.esClient.HealthCheck()
	}

	return results
}

// IsHealthy reports whether every configured component responds.
func (f *Factory) IsHealthy(ctx context.Context) bool {
	for _, err := range f.HealthCheck(ctx) {
		if err != nil {
			return false
		}
	}
	return true
}

// Close shuts everything down once, in reverse dependency order.
func (f *Factory) Close() {
	f.closeOnce.Do(func() {
		util.Info("Shutting down factory")

		if f.fileSink != nil {
			if err := f.fileSink.Close(); err != nil {
				util.Error("Failed to close audit file sink", zap.Error(err))
			}
		}
		if f.kafkaProducer != nil {
			_ = f.kafkaProducer.Close()
		}
		if f.esClient != nil {
			f.esClient.Close()
		}
		if f.clickhouseClient != nil {
			_ = f.clickhouseClient.Close()
		}
		if f.redisClient != nil {
			_ = f.redisClient.Close()
		}
		if f.postgresClient != nil {
			f.postgresClient.Close()
		}

		util.Sync()
	})
}
