package actions

import (
	"context"
	"log/slog"
	"time"
)

// Ack is the acknowledgement returned by an external service call.
type Ack struct {
	ReferenceID string    `json:"reference_id"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// ExternalService represents a downstream system reachable by the router.
// Calls are simulated: no network traffic is issued, the service fabricates
// an acknowledgement with a deterministic reference id derived from the
// entry id.
type ExternalService struct {
	name   string
	url    string
	prefix string
	status string
	logger *slog.Logger
}

// Call simulates a request against the service endpoint and returns the
// acknowledgement the real system would produce.
func (s *ExternalService) Call(ctx context.Context, endpoint, entryID string, payload map[string]any) Ack {
	s.logger.Debug("external call simulated",
		"service", s.name,
		"url", s.url+endpoint,
		"entry_id", entryID,
	)

	return Ack{
		ReferenceID: s.prefix + shortID(entryID),
		Status:      s.status,
		Timestamp:   time.Now(),
	}
}

// Services bundles the external systems the action router dispatches to.
type Services struct {
	CRM  *ExternalService
	Risk *ExternalService
}

// NewServices builds the simulated CRM and risk service clients.
func NewServices(crmURL, riskURL string, logger *slog.Logger) *Services {
	return &Services{
		CRM: &ExternalService{
			name:   "crm",
			url:    crmURL,
			prefix: "TKT-",
			status: "created",
			logger: logger.With("service", "crm"),
		},
		Risk: &ExternalService{
			name:   "risk",
			url:    riskURL,
			prefix: "REV-",
			status: "flagged",
			logger: logger.With("service", "risk"),
		},
	}
}

// shortID returns the first 8 characters of an entry id for use in
// human-readable reference ids.
func shortID(entryID string) string {
	if len(entryID) > 8 {
		return entryID[:8]
	}
	return entryID
}
