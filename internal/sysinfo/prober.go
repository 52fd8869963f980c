package sysinfo

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"radius-admin/internal/models"
)

// Prober reports the state of a host service by name.
type Prober interface {
	Status(ctx context.Context, service string) models.ServiceState
}

// SystemdProber asks systemctl. Anything other than a clean
// active/inactive answer maps to unknown rather than guessing.
type SystemdProber struct {
	timeout time.Duration
}

func NewSystemdProber() *SystemdProber {
	return &SystemdProber{timeout: 3 * time.Second}
}

func (p *SystemdProber) Status(ctx context.Context, service string) models.ServiceState {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "systemctl", "is-active", service).Output()
	state := strings.TrimSpace(string(out))

	switch state {
	case "active":
		return models.ServiceActive
	case "inactive", "failed", "deactivating":
		return models.ServiceInactive
	}
	if err != nil && state == "" {
		return models.ServiceUnknown
	}
	return models.ServiceUnknown
}

// StaticProber serves tests and containerized deployments where
// systemctl is unavailable.
type StaticProber struct {
	States map[string]models.ServiceState
}

func (p *StaticProber) Status(ctx context.Context, service string) models.ServiceState {
	if state, ok := p.States[service]; ok {
		return state
	}
	return models.ServiceUnknown
}
