// Package classifier scores raw document text against format and intent
// rulebooks and produces a confidence-scored classification verdict.
// Classification is pure rule evaluation: the same input always yields the
// same result.
package classifier

import (
	"regexp"
	"strings"
)

// Format is the structural category of an inbound document.
type Format string

const (
	FormatEmail Format = "email"
	FormatJSON  Format = "json"
	FormatPDF   Format = "pdf"
)

// ParseFormat maps a string to a known Format.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatEmail:
		return FormatEmail, true
	case FormatJSON:
		return FormatJSON, true
	case FormatPDF:
		return FormatPDF, true
	}
	return "", false
}

// Intent is the business purpose inferred from document content.
type Intent string

const (
	IntentRFQ        Intent = "rfq"
	IntentComplaint  Intent = "complaint"
	IntentInvoice    Intent = "invoice"
	IntentRegulation Intent = "regulation"
	IntentFraudRisk  Intent = "fraud_risk"
	IntentUnknown    Intent = "unknown"
)

// Result is an immutable classification verdict. Confidence is always
// within [0, 1].
type Result struct {
	Format     Format         `json:"format" msgpack:"format"`
	Intent     Intent         `json:"intent" msgpack:"intent"`
	Confidence float64        `json:"confidence" msgpack:"confidence"`
	Metadata   map[string]any `json:"metadata" msgpack:"metadata"`
}

var (
	urgencyWordsRe = regexp.MustCompile(`(?i)urgent|asap|immediate`)
	addressRe      = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
)

// Classifier evaluates document text against a rulebook.
type Classifier struct {
	rules *Rulebook
}

// New creates a Classifier over the given rulebook.
func New(rules *Rulebook) *Classifier {
	return &Classifier{rules: rules}
}

// Classify detects format and intent for the given text and computes a
// confidence score plus lightweight metadata.
func (c *Classifier) Classify(text string) Result {
	format := c.detectFormat(text)
	return c.build(text, format)
}

// ClassifyForced produces a verdict with the format fixed by the caller
// (an explicit hint bypassing auto-detection). Intent detection, confidence
// scoring, and metadata extraction still run against the text.
func (c *Classifier) ClassifyForced(text string, format Format) Result {
	return c.build(text, format)
}

func (c *Classifier) build(text string, format Format) Result {
	intent := c.detectIntent(text)
	return Result{
		Format:     format,
		Intent:     intent,
		Confidence: c.confidence(text, format, intent),
		Metadata:   c.metadata(text, format),
	}
}

// detectFormat sums regex match counts per format table and picks the
// strictly highest nonzero score; ties resolve to the earlier table entry.
// With no matches at all, structural heuristics decide: a leading brace
// means JSON, an address plus header marker means email, and PDF is the
// generic fallback.
func (c *Classifier) detectFormat(text string) Format {
	best := Format("")
	bestScore := 0

	for _, rule := range c.rules.formats {
		score := 0
		for _, re := range rule.patterns {
			score += len(re.FindAllStringIndex(text, -1))
		}
		if score > bestScore {
			best = rule.format
			bestScore = score
		}
	}

	if bestScore > 0 {
		return best
	}

	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(strings.TrimSpace(text), "{"):
		return FormatJSON
	case strings.Contains(text, "@") &&
		(strings.Contains(lower, "subject:") || strings.Contains(lower, "from:")):
		return FormatEmail
	default:
		return FormatPDF
	}
}

// detectIntent counts keyword hits per intent table; highest nonzero total
// wins with ties resolving to the earlier entry, zero yields unknown.
func (c *Classifier) detectIntent(text string) Intent {
	lower := strings.ToLower(text)

	best := IntentUnknown
	bestScore := 0

	for _, rule := range c.rules.intents {
		score := 0
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = rule.intent
			bestScore = score
		}
	}

	return best
}

// confidence averages the matched-pattern fraction for the chosen format
// with the matched-keyword fraction for the chosen intent. Each fraction
// counts distinct matching entries over the table size, denominator floored
// at one.
func (c *Classifier) confidence(text string, format Format, intent Intent) float64 {
	lower := strings.ToLower(text)

	formatMatches, formatTotal := 0, 0
	for _, rule := range c.rules.formats {
		if rule.format != format {
			continue
		}
		formatTotal = len(rule.patterns)
		for _, re := range rule.patterns {
			if re.MatchString(text) {
				formatMatches++
			}
		}
	}

	intentMatches, intentTotal := 0, 0
	for _, rule := range c.rules.intents {
		if rule.intent != intent {
			continue
		}
		intentTotal = len(rule.keywords)
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				intentMatches++
			}
		}
	}

	formatConfidence := float64(formatMatches) / float64(max(formatTotal, 1))
	intentConfidence := float64(intentMatches) / float64(max(intentTotal, 1))

	return clamp01((formatConfidence + intentConfidence) / 2)
}

func (c *Classifier) metadata(text string, format Format) map[string]any {
	lower := strings.ToLower(text)

	meta := map[string]any{
		"length":     len(text),
		"word_count": len(strings.Fields(text)),
		"format":     string(format),
	}

	switch format {
	case FormatEmail:
		if urgencyWordsRe.MatchString(text) {
			meta["urgency_indicators"] = true
		}
		if addr := addressRe.FindString(text); addr != "" {
			if at := strings.LastIndex(addr, "@"); at >= 0 {
				meta["sender_domain"] = addr[at+1:]
			}
		}
	case FormatJSON:
		if strings.Contains(lower, "webhook") {
			meta["webhook_detected"] = true
		}
	case FormatPDF:
		if strings.Contains(lower, "invoice") {
			meta["document_type"] = "invoice"
		} else if strings.Contains(lower, "policy") ||
			strings.Contains(lower, "regulation") ||
			strings.Contains(lower, "compliance") {
			meta["document_type"] = "regulation"
		}
	}

	return meta
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
