package service

import (
	"radius-admin/internal/audit"
	"radius-admin/internal/config"
	"radius-admin/internal/encryption"
	"radius-admin/internal/hashing"
	"radius-admin/internal/ratelimit"
	"radius-admin/internal/session"
	"radius-admin/internal/sysinfo"
)

// ServiceFactory wires the service layer once and hands out the
// instances.
type ServiceFactory struct {
	Auth        *AuthService
	Subscribers *SubscriberService
	Settings    *SettingsService
	Audits      *AuditService
	Dashboard   *DashboardService
	System      *SystemService
}

// Deps carries everything the services need, constructed by the
// top-level factory.
type Deps struct {
	Config   *config.Config
	Version  string
	Services []string

	Admins      AdminStore
	Subscribers SubscriberStore
	Settings    SettingsStore

	Hasher     *hashing.Hasher
	Encryption *encryption.Manager
	Sessions   *session.Manager
	Limiter    *ratelimit.Limiter
	Recorder   *audit.Recorder

	AuditReader   audit.Reader
	AuditSearcher audit.Searcher

	Health HealthChecker
	Prober sysinfo.Prober
}

func NewServiceFactory(d Deps) *ServiceFactory {
	settingsService := NewSettingsService(d.Settings, d.Encryption, d.Sessions, d.Recorder, d.Config.Session)
	auditService := NewAuditService(d.AuditReader, d.AuditSearcher)

	return &ServiceFactory{
		Auth:        NewAuthService(d.Admins, d.Hasher, d.Sessions, d.Limiter, d.Recorder, settingsService),
		Subscribers: NewSubscriberService(d.Subscribers, d.Recorder),
		Settings:    settingsService,
		Audits:      auditService,
		Dashboard:   NewDashboardService(d.Subscribers, auditService),
		System:      NewSystemService(d.Health, d.Prober, d.Services, d.Config.Environment, d.Version),
	}
}
