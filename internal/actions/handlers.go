package actions

import (
	"context"
	"time"
)

// Email action handlers.

func (r *Router) escalateToManager(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	payload := map[string]any{
		"type":      "escalation",
		"entry_id":  entryID,
		"urgency":   "high",
		"context":   map[string]any(actx),
		"timestamp": time.Now().Format(time.RFC3339),
	}

	ack := r.services.CRM.Call(ctx, "/escalate", entryID, payload)

	ticketID := ack.ReferenceID
	if ticketID == "" {
		ticketID = "ESC-" + shortID(entryID)
	}

	return Outcome{
		"status":      "escalated",
		"ticket_id":   ticketID,
		"assigned_to": "manager@company.com",
		"message":     "Issue escalated to management",
	}, nil
}

func (r *Router) createPriorityTicket(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	payload := map[string]any{
		"type":      "priority_ticket",
		"entry_id":  entryID,
		"priority":  "high",
		"context":   map[string]any(actx),
		"timestamp": time.Now().Format(time.RFC3339),
	}

	ack := r.services.CRM.Call(ctx, "/tickets", entryID, payload)

	ticketID := ack.ReferenceID
	if ticketID == "" {
		ticketID = "PRI-" + shortID(entryID)
	}

	return Outcome{
		"status":    "ticket_created",
		"ticket_id": ticketID,
		"priority":  "high",
		"message":   "Priority ticket created",
	}, nil
}

func (r *Router) createHighPriorityTicket(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return r.createPriorityTicket(ctx, actx, entryID)
}

func (r *Router) notifyTeamLead(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":          "notified",
		"notification_id": "NOT-" + shortID(entryID),
		"recipient":       "teamlead@company.com",
		"message":         "Team lead notified of high priority issue",
	}, nil
}

func (r *Router) standardResponse(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":      "response_sent",
		"response_id": "RSP-" + shortID(entryID),
		"message":     "Standard response sent to customer",
	}, nil
}

func (r *Router) logAndTrack(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":      "logged",
		"tracking_id": "TRK-" + shortID(entryID),
		"message":     "Issue logged and being tracked",
	}, nil
}

// Structured payload action handlers.

func (r *Router) logSchemaViolation(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":       "logged",
		"violation_id": "SCH-" + shortID(entryID),
		"message":      "Schema violation logged for review",
	}, nil
}

func (r *Router) notifyIntegrationTeam(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":          "notified",
		"notification_id": "INT-" + shortID(entryID),
		"recipient":       "integration@company.com",
		"message":         "Integration team notified of data issues",
	}, nil
}

func (r *Router) flagFinancialReview(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	payload := map[string]any{
		"type":      "financial_review",
		"entry_id":  entryID,
		"context":   map[string]any(actx),
		"timestamp": time.Now().Format(time.RFC3339),
	}

	ack := r.services.Risk.Call(ctx, "/financial_review", entryID, payload)

	reviewID := ack.ReferenceID
	if reviewID == "" {
		reviewID = "FIN-" + shortID(entryID)
	}

	return Outcome{
		"status":    "flagged",
		"review_id": reviewID,
		"message":   "Flagged for financial review",
	}, nil
}

func (r *Router) logDataQualityIssue(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":   "logged",
		"issue_id": "DQ-" + shortID(entryID),
		"message":  "Data quality issue logged",
	}, nil
}

func (r *Router) quarantineForReview(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":        "quarantined",
		"quarantine_id": "QUA-" + shortID(entryID),
		"message":       "Data quarantined for manual review",
	}, nil
}

// Document action handlers.

func (r *Router) requireManagerApproval(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":      "pending_approval",
		"approval_id": "APP-" + shortID(entryID),
		"approver":    "manager@company.com",
		"message":     "Awaiting manager approval",
	}, nil
}

func (r *Router) routeToComplianceTeam(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":     "routed",
		"routing_id": "COM-" + shortID(entryID),
		"recipient":  "compliance@company.com",
		"message":    "Routed to compliance team",
	}, nil
}

func (r *Router) notifyDataProtectionOfficer(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":          "notified",
		"notification_id": "DPO-" + shortID(entryID),
		"recipient":       "dpo@company.com",
		"message":         "Data protection officer notified",
	}, nil
}

func (r *Router) routeToRegulatoryAffairs(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":     "routed",
		"routing_id": "REG-" + shortID(entryID),
		"recipient":  "regulatory@company.com",
		"message":    "Routed to regulatory affairs",
	}, nil
}

func (r *Router) encryptAndSecure(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":      "secured",
		"security_id": "SEC-" + shortID(entryID),
		"message":     "Document encrypted and secured",
	}, nil
}

func (r *Router) prioritizeProcessing(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":      "prioritized",
		"priority_id": "PRI-" + shortID(entryID),
		"message":     "Document processing prioritized",
	}, nil
}

// General action handlers.

func (r *Router) logError(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":   "logged",
		"error_id": "ERR-" + shortID(entryID),
		"message":  "Error logged for investigation",
	}, nil
}

func (r *Router) alertAdmin(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":    "alerted",
		"alert_id":  "ADM-" + shortID(entryID),
		"recipient": "admin@company.com",
		"message":   "Administrator alerted",
	}, nil
}

func (r *Router) processNormally(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return Outcome{
		"status":     "processing",
		"process_id": "NOR-" + shortID(entryID),
		"message":    "Processing normally",
	}, nil
}

func (r *Router) standardProcessing(ctx context.Context, actx Context, entryID string) (Outcome, error) {
	return r.processNormally(ctx, actx, entryID)
}
