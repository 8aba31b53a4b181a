// Package agents implements the format-specific extraction agents. Each
// agent consumes raw document text plus the classifier's verdict and emits
// a uniform result envelope: a typed structured record, an ordered list of
// recommended action ids, and processing metadata.
//
// Agents never fail the pipeline. Input malformation (such as unparsable
// JSON) degrades to a well-formed error-shaped result instead of an error
// return.
package agents

import (
	"strings"

	"github.com/docroute/docroute/internal/classifier"
)

// DocumentAgent is the common contract for format agents. An agent is
// invoked only when the document's classified format matches Format().
type DocumentAgent interface {
	Name() string
	Format() classifier.Format
	Capabilities() []string
	Process(text string, classification classifier.Result) *Result
}

// Result is the uniform agent output envelope. Exactly one of Email, JSON,
// or PDF is set, matching the producing agent's format.
type Result struct {
	AgentName          string         `json:"agent_name" msgpack:"agent_name"`
	Email              *EmailData     `json:"email_data,omitempty" msgpack:"email_data,omitempty"`
	JSON               *JSONData      `json:"json_data,omitempty" msgpack:"json_data,omitempty"`
	PDF                *PDFData       `json:"pdf_data,omitempty" msgpack:"pdf_data,omitempty"`
	RecommendedActions []string       `json:"recommended_actions" msgpack:"recommended_actions"`
	ProcessingMetadata map[string]any `json:"processing_metadata" msgpack:"processing_metadata"`
}

// Summary returns the one-line decision-trace description of this result.
func (r *Result) Summary() string {
	switch {
	case r.Email != nil:
		return "Email processed - Urgency: " + string(r.Email.Urgency) +
			", Tone: " + string(r.Email.Tone)
	case r.JSON != nil:
		valid := "false"
		if r.JSON.SchemaValid {
			valid = "true"
		}
		return "JSON processed - Type: " + r.JSON.WebhookType + ", Valid: " + valid
	case r.PDF != nil:
		return "PDF processed - Type: " + r.PDF.DocumentType
	default:
		return "processed"
	}
}

// Registry holds one agent per format for dispatch by classified format.
type Registry struct {
	byFormat map[classifier.Format]DocumentAgent
	order    []DocumentAgent
}

// NewRegistry builds a Registry; a later agent for an already-registered
// format replaces the earlier one.
func NewRegistry(list ...DocumentAgent) *Registry {
	r := &Registry{byFormat: make(map[classifier.Format]DocumentAgent, len(list))}
	for _, a := range list {
		if _, exists := r.byFormat[a.Format()]; !exists {
			r.order = append(r.order, a)
		}
		r.byFormat[a.Format()] = a
	}
	return r
}

// Defaults returns a registry with the standard email, JSON, and PDF agents.
func Defaults() *Registry {
	return NewRegistry(
		NewEmailAgent(),
		NewJSONAgent(),
		NewPDFAgent(0),
	)
}

// ForFormat returns the agent registered for the given format.
func (r *Registry) ForFormat(f classifier.Format) (DocumentAgent, bool) {
	a, ok := r.byFormat[f]
	return a, ok
}

// All returns the registered agents in registration order.
func (r *Registry) All() []DocumentAgent {
	return r.order
}

// keywordsIn returns the keywords present in text, compared case-insensitively.
func keywordsIn(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return found
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
