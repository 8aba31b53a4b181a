package classifier

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// formatRule pairs a format with the regex patterns that signal it.
// Rules are evaluated in slice order; ties in scoring resolve to the
// earlier rule, so declaration order is part of the contract.
type formatRule struct {
	format   Format
	patterns []*regexp.Regexp
}

// intentRule pairs a business intent with its signal keywords.
type intentRule struct {
	intent   Intent
	keywords []string
}

// Rulebook holds the ordered format and intent tables the classifier
// scores against.
type Rulebook struct {
	formats []formatRule
	intents []intentRule
}

// DefaultRulebook returns the built-in format and intent tables.
func DefaultRulebook() *Rulebook {
	return &Rulebook{
		formats: []formatRule{
			{FormatEmail, compileAll(
				`subject:`, `from:`, `to:`, `@\w+\.\w+`,
				`dear`, `regards`, `sincerely`,
			)},
			{FormatJSON, compileAll(
				`^\s*\{`, `:\s*["\[\{]`, `":\s*\d+`,
				`webhook`, `payload`, `data`,
			)},
			{FormatPDF, compileAll(
				`%PDF`, `invoice`, `total:`, `amount:`,
				`policy`, `regulation`, `compliance`,
			)},
		},
		intents: []intentRule{
			{IntentRFQ, []string{
				"request for quote", "rfq", "quotation", "bid",
				"proposal", "pricing", "estimate",
			}},
			{IntentComplaint, []string{
				"complaint", "dissatisfied", "problem", "issue",
				"unhappy", "angry", "disappointed", "terrible",
			}},
			{IntentInvoice, []string{
				"invoice", "bill", "payment", "amount due",
				"total:", "line item", "tax", "subtotal",
			}},
			{IntentRegulation, []string{
				"gdpr", "compliance", "regulation", "policy",
				"fda", "sox", "hipaa", "regulatory",
			}},
			{IntentFraudRisk, []string{
				"suspicious", "fraud", "anomaly", "unusual",
				"security", "breach", "unauthorized", "alert",
			}},
		},
	}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return compiled
}

// overlayFile is the YAML shape for rulebook extensions.
type overlayFile struct {
	Formats map[string][]string `yaml:"formats"`
	Intents map[string][]string `yaml:"intents"`
}

// MergeOverlay extends the rulebook with patterns and keywords read from r.
// Overlay entries append to existing tables so built-in declaration order,
// and therefore tie-breaking, is preserved. Unknown format or intent names
// are rejected.
func (rb *Rulebook) MergeOverlay(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read overlay: %w", err)
	}

	var overlay overlayFile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse overlay: %w", err)
	}

	for name, patterns := range overlay.Formats {
		idx := -1
		for i := range rb.formats {
			if string(rb.formats[i].format) == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("overlay names unknown format %q", name)
		}
		for _, p := range patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return fmt.Errorf("overlay pattern for %s: %w", name, err)
			}
			rb.formats[idx].patterns = append(rb.formats[idx].patterns, re)
		}
	}

	for name, keywords := range overlay.Intents {
		idx := -1
		for i := range rb.intents {
			if string(rb.intents[i].intent) == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("overlay names unknown intent %q", name)
		}
		rb.intents[idx].keywords = append(rb.intents[idx].keywords, keywords...)
	}

	return nil
}

// LoadOverlay applies a YAML overlay file at path to the rulebook.
func (rb *Rulebook) LoadOverlay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open overlay: %w", err)
	}
	defer f.Close()

	return rb.MergeOverlay(f)
}
