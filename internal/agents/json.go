package agents

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docroute/docroute/internal/classifier"
)

// JSONData is the structured record extracted from a JSON webhook payload.
type JSONData struct {
	WebhookType      string         `json:"webhook_type" msgpack:"webhook_type"`
	Payload          any            `json:"payload" msgpack:"payload"`
	SchemaValid      bool           `json:"schema_valid" msgpack:"schema_valid"`
	ValidationErrors []string       `json:"validation_errors" msgpack:"validation_errors"`
	Anomalies        []string       `json:"anomalies" msgpack:"anomalies"`
	ExtractedFields  map[string]any `json:"extracted_fields" msgpack:"extracted_fields"`
}

// webhookSchema lists the fields required for a recognized webhook type.
type webhookSchema struct {
	required []string
}

// typeProbe pairs a webhook type with the characteristic fields whose
// presence identifies it. Probes run in declaration order; the first hit
// wins.
type typeProbe struct {
	webhookType string
	fields      []string
}

// JSONAgent parses webhook payloads, infers their type, validates required
// fields, and runs the anomaly battery. A parse failure is terminal but
// local: it yields an error-shaped result, never an error return.
type JSONAgent struct {
	id      uuid.UUID
	probes  []typeProbe
	schemas map[string]webhookSchema
}

// NewJSONAgent creates a JSONAgent with the built-in webhook schemas.
func NewJSONAgent() *JSONAgent {
	return &JSONAgent{
		id: uuid.New(),
		probes: []typeProbe{
			{"payment", []string{"transaction_id", "payment_id", "amount", "currency"}},
			{"user_event", []string{"user_id", "event_type", "session_id"}},
			{"order", []string{"order_id", "customer_id", "items"}},
			{"system_alert", []string{"alert_type", "severity", "message"}},
		},
		schemas: map[string]webhookSchema{
			"payment":      {required: []string{"transaction_id", "amount", "currency", "status"}},
			"user_event":   {required: []string{"user_id", "event_type", "timestamp"}},
			"order":        {required: []string{"order_id", "customer_id", "items", "total"}},
			"system_alert": {required: []string{"alert_type", "severity", "message", "timestamp"}},
		},
	}
}

func (a *JSONAgent) Name() string { return "JSONAgent" }

func (a *JSONAgent) Format() classifier.Format { return classifier.FormatJSON }

func (a *JSONAgent) Capabilities() []string {
	return []string{"webhook_typing", "schema_validation", "anomaly_detection"}
}

// Process parses text as JSON and validates it against the inferred
// webhook type's schema.
func (a *JSONAgent) Process(text string, classification classifier.Result) *Result {
	var payload any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return &Result{
			AgentName: a.Name(),
			JSON: &JSONData{
				WebhookType:      "invalid",
				Payload:          map[string]any{},
				SchemaValid:      false,
				ValidationErrors: []string{fmt.Sprintf("JSON parse error: %v", err)},
				Anomalies:        []string{"malformed_json"},
				ExtractedFields:  map[string]any{},
			},
			RecommendedActions: []string{"log_error", "alert_admin"},
			ProcessingMetadata: map[string]any{
				"agent_id":            a.id.String(),
				"parsed_successfully": false,
				"error":               err.Error(),
				"confidence":          0.0,
			},
		}
	}

	obj, _ := payload.(map[string]any)

	webhookType := a.detectWebhookType(obj)
	schemaValid, validationErrors := a.validateSchema(obj, webhookType)
	anomalies := a.detectAnomalies(obj, webhookType)

	return &Result{
		AgentName: a.Name(),
		JSON: &JSONData{
			WebhookType:      webhookType,
			Payload:          payload,
			SchemaValid:      schemaValid,
			ValidationErrors: validationErrors,
			Anomalies:        anomalies,
			ExtractedFields:  a.extractFields(obj),
		},
		RecommendedActions: recommendJSONActions(anomalies, schemaValid),
		ProcessingMetadata: map[string]any{
			"agent_id":            a.id.String(),
			"parsed_successfully": true,
			"field_count":         len(obj),
			"confidence":          classification.Confidence,
		},
	}
}

// detectWebhookType infers the payload type from characteristic field
// presence, checked in fixed probe order.
func (a *JSONAgent) detectWebhookType(obj map[string]any) string {
	if obj == nil {
		return "unknown"
	}

	for _, probe := range a.probes {
		for _, field := range probe.fields {
			if _, ok := obj[field]; ok {
				return probe.webhookType
			}
		}
	}

	return "generic"
}

// validateSchema checks required-field presence and non-nullness for the
// inferred type plus cross-cutting field type rules. Unrecognized types
// auto-pass.
func (a *JSONAgent) validateSchema(obj map[string]any, webhookType string) (bool, []string) {
	errs := []string{}

	schema, known := a.schemas[webhookType]
	if !known {
		return true, errs
	}

	for _, field := range schema.required {
		v, present := obj[field]
		if !present {
			errs = append(errs, fmt.Sprintf("Missing required field: %s", field))
		} else if v == nil {
			errs = append(errs, fmt.Sprintf("Required field '%s' is null", field))
		}
	}

	errs = append(errs, validateFieldTypes(obj)...)

	return len(errs) == 0, errs
}

// validateFieldTypes enforces the cross-cutting rules: amount must be
// numeric, timestamp must be string or number, and any *_id field must be
// string or number.
func validateFieldTypes(obj map[string]any) []string {
	var errs []string

	if v, ok := obj["amount"]; ok {
		if _, isNum := v.(float64); !isNum {
			errs = append(errs, "Field 'amount' should be numeric")
		}
	}

	if v, ok := obj["timestamp"]; ok {
		switch v.(type) {
		case string, float64:
		default:
			errs = append(errs, "Field 'timestamp' should be string or number")
		}
	}

	for field, v := range obj {
		if !strings.HasSuffix(field, "_id") {
			continue
		}
		switch v.(type) {
		case string, float64:
		default:
			errs = append(errs, fmt.Sprintf("ID field '%s' should be string or number", field))
		}
	}

	return errs
}

// detectAnomalies runs the fixed anomaly battery: suspicious amounts,
// unusable timestamps, empty order items, and suspicious status values.
func (a *JSONAgent) detectAnomalies(obj map[string]any, webhookType string) []string {
	anomalies := []string{}

	if v, ok := obj["amount"]; ok {
		if amount, parsed := toFloat(v); parsed {
			if amount < 0 {
				anomalies = append(anomalies, "negative_amount")
			} else if amount > 100000 {
				anomalies = append(anomalies, "unusually_high_amount")
			}
		} else {
			anomalies = append(anomalies, "invalid_amount_format")
		}
	}

	if v, ok := obj["timestamp"]; ok {
		switch ts := v.(type) {
		case string:
			if !parseableTimestamp(ts) {
				anomalies = append(anomalies, "malformed_timestamp")
			}
		case float64:
			if ts < 0 || ts > 2147483647 {
				anomalies = append(anomalies, "invalid_timestamp_range")
			}
		}
	}

	if webhookType == "order" {
		if items, ok := obj["items"].([]any); ok && len(items) == 0 {
			anomalies = append(anomalies, "empty_items_array")
		}
	}

	if v, ok := obj["status"]; ok {
		status := strings.ToLower(fmt.Sprintf("%v", v))
		switch status {
		case "test", "debug", "fake", "dummy":
			anomalies = append(anomalies, "suspicious_status_value")
		}
	}

	return anomalies
}

// extractFields harvests the common identifying fields plus payload shape
// statistics for downstream processing.
func (a *JSONAgent) extractFields(obj map[string]any) map[string]any {
	extracted := map[string]any{}

	important := []string{
		"user_id", "customer_id", "transaction_id", "order_id",
		"amount", "currency", "status", "timestamp", "event_type",
	}
	for _, field := range important {
		if v, ok := obj[field]; ok {
			extracted[field] = v
		}
	}

	if nested, ok := obj["data"].(map[string]any); ok {
		keys := make([]string, 0, len(nested))
		for k := range nested {
			keys = append(keys, k)
		}
		extracted["nested_data_keys"] = keys
	}

	if encoded, err := json.Marshal(obj); err == nil {
		extracted["payload_size"] = len(encoded)
	}
	extracted["field_count"] = len(obj)

	return extracted
}

// recommendJSONActions escalates progressively; anomaly-triggered actions
// are additive, not mutually exclusive.
func recommendJSONActions(anomalies []string, schemaValid bool) []string {
	actions := []string{}

	if !schemaValid {
		actions = append(actions, "log_schema_violation", "notify_integration_team")
	}

	if len(anomalies) > 0 {
		for _, a := range anomalies {
			if a == "negative_amount" || a == "unusually_high_amount" {
				actions = append(actions, "flag_financial_review")
				break
			}
		}
		for _, a := range anomalies {
			if a == "malformed_timestamp" || a == "invalid_timestamp_range" {
				actions = append(actions, "log_data_quality_issue")
				break
			}
		}
		if len(anomalies) > 2 {
			actions = append(actions, "quarantine_for_review")
		}
	} else {
		actions = append(actions, "process_normally")
	}

	return actions
}

// toFloat accepts JSON numbers plus numeric strings, matching the lenient
// amount handling of upstream producers.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseableTimestamp(s string) bool {
	s = strings.Replace(s, "Z", "+00:00", 1)
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
