// Package actions implements the action router: the dispatch layer that
// executes agent-recommended actions against simulated external services
// and records each handled action on the processing record.
package actions

import (
	"context"
	"log/slog"
	"sort"

	"github.com/docroute/docroute/internal/records"
)

// Outcome is the result payload produced by a single action handler.
type Outcome map[string]any

// Context carries classification and agent output details that handlers
// may forward to external services.
type Context map[string]any

// HandlerFunc executes one action for one processing record.
type HandlerFunc func(ctx context.Context, actx Context, entryID string) (Outcome, error)

// Router dispatches recommended actions to their handlers. One handler
// failing never aborts the remaining actions in the same batch.
type Router struct {
	handlers map[string]HandlerFunc
	services *Services
	records  records.System
	logger   *slog.Logger
}

// NewRouter builds a Router with the full handler registry.
func NewRouter(services *Services, recs records.System, logger *slog.Logger) *Router {
	r := &Router{
		services: services,
		records:  recs,
		logger:   logger.With("system", "actions"),
	}

	r.handlers = map[string]HandlerFunc{
		// email actions
		"escalate_to_manager":         r.escalateToManager,
		"create_priority_ticket":      r.createPriorityTicket,
		"create_high_priority_ticket": r.createHighPriorityTicket,
		"notify_team_lead":            r.notifyTeamLead,
		"standard_response":           r.standardResponse,
		"log_and_track":               r.logAndTrack,

		// structured payload actions
		"log_schema_violation":    r.logSchemaViolation,
		"notify_integration_team": r.notifyIntegrationTeam,
		"flag_financial_review":   r.flagFinancialReview,
		"log_data_quality_issue":  r.logDataQualityIssue,
		"quarantine_for_review":   r.quarantineForReview,

		// document actions
		"require_manager_approval":       r.requireManagerApproval,
		"route_to_compliance_team":       r.routeToComplianceTeam,
		"notify_data_protection_officer": r.notifyDataProtectionOfficer,
		"route_to_regulatory_affairs":    r.routeToRegulatoryAffairs,
		"encrypt_and_secure":             r.encryptAndSecure,
		"prioritize_processing":          r.prioritizeProcessing,

		// general actions
		"log_error":           r.logError,
		"alert_admin":         r.alertAdmin,
		"process_normally":    r.processNormally,
		"standard_processing": r.standardProcessing,
	}

	return r
}

// Known reports whether an action name has a registered handler.
func (r *Router) Known(action string) bool {
	_, ok := r.handlers[action]
	return ok
}

// Actions returns the sorted names of all registered actions.
func (r *Router) Actions() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Route executes each action in order and returns the per-action outcomes.
// Unknown actions produce an unknown_action outcome without touching the
// record; handled actions, including failed ones, are appended to the
// record's action trace as "<action>: <status>".
func (r *Router) Route(ctx context.Context, actionNames []string, actx Context, entryID string) map[string]Outcome {
	results := make(map[string]Outcome, len(actionNames))

	for _, action := range actionNames {
		handler, ok := r.handlers[action]
		if !ok {
			r.logger.Warn("unknown action", "action", action, "entry_id", entryID)
			results[action] = Outcome{
				"status":  "unknown_action",
				"message": "No handler for action: " + action,
			}
			continue
		}

		outcome, err := handler(ctx, actx, entryID)
		if err != nil {
			r.logger.Error("action failed", "action", action, "entry_id", entryID, "error", err)
			outcome = Outcome{
				"status":  "error",
				"message": err.Error(),
			}
		}
		results[action] = outcome

		status, _ := outcome["status"].(string)
		if status == "" {
			status = "completed"
		}
		if err := r.records.AppendAction(ctx, entryID, action+": "+status); err != nil {
			r.logger.Warn("record action append failed", "action", action, "entry_id", entryID, "error", err)
		}
	}

	return results
}
