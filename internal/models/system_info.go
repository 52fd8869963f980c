package models

// ServiceState is the coarse status reported for a managed service
// (freeradius, mariadb, ...). The prober is an external collaborator;
// anything it cannot determine maps to ServiceUnknown.
type ServiceState string

const (
	ServiceActive   ServiceState = "active"
	ServiceInactive ServiceState = "inactive"
	ServiceUnknown  ServiceState = "unknown"
)

// SystemInfo is the payload of the system page: backing component health
// plus the status of the host services the panel fronts.
type SystemInfo struct {
	Environment string                  `json:"environment"`
	Version     string                  `json:"version"`
	GoVersion   string                  `json:"go_version"`
	Components  map[string]string       `json:"components"`
	Services    map[string]ServiceState `json:"services"`
}

// DashboardStats backs the landing page counters.
type DashboardStats struct {
	TotalUsers    int           `json:"total_users"`
	TotalGroups   int           `json:"total_groups"`
	RecentRecords []AuditRecord `json:"recent_records"`
}
