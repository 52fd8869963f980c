package service

import (
	"context"
	"runtime"

	"radius-admin/internal/models"
	"radius-admin/internal/sysinfo"
)

// HealthChecker reports per-component connectivity. The factory
// implements it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) map[string]error
}

// SystemService builds the system page payload: backing component
// health plus host service states.
type SystemService struct {
	health      HealthChecker
	prober      sysinfo.Prober
	services    []string
	environment string
	version     string
}

func NewSystemService(health HealthChecker, prober sysinfo.Prober, services []string, environment, version string) *SystemService {
	return &SystemService{
		health:      health,
		prober:      prober,
		services:    services,
		environment: environment,
		version:     version,
	}
}

// Info gathers current status. Component errors are reduced to a coarse
// healthy/unavailable so connection strings never leak to the UI.
func (s *SystemService) Info(ctx context.Context) *models.SystemInfo {
	info := &models.SystemInfo{
		Environment: s.environment,
		Version:     s.version,
		GoVersion:   runtime.Version(),
		Components:  make(map[string]string),
		Services:    make(map[string]models.ServiceState),
	}

	for name, err := range s.health.HealthCheck(ctx) {
		if err != nil {
			info.Components[name] = "unavailable"
		} else {
			info.Components[name] = "healthy"
		}
	}

	for _, svc := range s.services {
		info.Services[svc] = s.prober.Status(ctx, svc)
	}

	return info
}
