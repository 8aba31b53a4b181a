package classifier_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/docroute/docroute/internal/classifier"
)

func newClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()
	return classifier.New(classifier.DefaultRulebook())
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		text string
		want classifier.Format
	}{
		{
			name: "email headers",
			text: "From: customer@example.com\nSubject: Order status\n\nDear team, regards",
			want: classifier.FormatEmail,
		},
		{
			name: "json payload",
			text: `{"webhook": "payment", "payload": {"amount": 50}}`,
			want: classifier.FormatJSON,
		},
		{
			name: "pdf invoice text",
			text: "%PDF-1.4 Invoice\nTotal: $100.00\nAmount: due on receipt",
			want: classifier.FormatPDF,
		},
		{
			name: "regulation document",
			text: "This policy describes the regulation and compliance requirements.",
			want: classifier.FormatPDF,
		},
	}

	c := newClassifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text)
			if got.Format != tt.want {
				t.Errorf("format: got %s, want %s", got.Format, tt.want)
			}
		})
	}
}

func TestFormatFallbackHeuristics(t *testing.T) {
	tests := []struct {
		name string
		text string
		want classifier.Format
	}{
		{"leading brace", "{plain but braced", classifier.FormatJSON},
		{"address with header marker", "from: someone@somewhere.io", classifier.FormatEmail},
		{"generic text", "quarterly report contents", classifier.FormatPDF},
	}

	c := newClassifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text)
			if got.Format != tt.want {
				t.Errorf("format: got %s, want %s", got.Format, tt.want)
			}
		})
	}
}

func TestFormatTieBreakPrefersEarlierTable(t *testing.T) {
	c := newClassifier(t)

	// Two email pattern hits and two json pattern hits: the earlier
	// table entry (email) must win deterministically.
	text := "from: a@b.com webhook payload"
	got := c.Classify(text)
	if got.Format != classifier.FormatEmail {
		t.Errorf("tie-break format: got %s, want %s", got.Format, classifier.FormatEmail)
	}
}

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want classifier.Intent
	}{
		{"rfq", "Please send a quotation with pricing for 50 units", classifier.IntentRFQ},
		{"complaint", "I am dissatisfied and disappointed with this terrible issue", classifier.IntentComplaint},
		{"invoice", "Invoice attached, payment due upon receipt", classifier.IntentInvoice},
		{"regulation", "New compliance regulation policy effective today", classifier.IntentRegulation},
		{"fraud risk", "We detected suspicious unauthorized account activity", classifier.IntentFraudRisk},
		{"unknown", "weekly team lunch schedule", classifier.IntentUnknown},
	}

	c := newClassifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text)
			if got.Intent != tt.want {
				t.Errorf("intent: got %s, want %s", got.Intent, tt.want)
			}
		})
	}
}

func TestConfidenceBounds(t *testing.T) {
	c := newClassifier(t)

	inputs := []string{
		"",
		"plain text with nothing special",
		"From: a@b.com\nSubject: urgent quote request pricing quotation rfq",
		`{"webhook": "x", "payload": "y", "data": {"amount": 1}}`,
		strings.Repeat("invoice payment due total: $5 ", 100),
	}

	for _, text := range inputs {
		result := c.Classify(text)
		if result.Confidence < 0 || result.Confidence > 1 {
			t.Errorf("confidence out of range for %q: %f", text, result.Confidence)
		}
	}
}

func TestClassifyIdempotent(t *testing.T) {
	c := newClassifier(t)
	text := "From: angry@customer.com\nSubject: complaint\n\nThis is unacceptable, I want a refund."

	first := c.Classify(text)
	second := c.Classify(text)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("classification not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestClassifyForced(t *testing.T) {
	c := newClassifier(t)
	text := `{"payload": "not really an email"}`

	got := c.ClassifyForced(text, classifier.FormatEmail)
	if got.Format != classifier.FormatEmail {
		t.Errorf("forced format: got %s, want email", got.Format)
	}
	if got.Confidence < 0 || got.Confidence > 1 {
		t.Errorf("confidence out of range: %f", got.Confidence)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input  string
		want   classifier.Format
		wantOK bool
	}{
		{"email", classifier.FormatEmail, true},
		{"JSON", classifier.FormatJSON, true},
		{" pdf ", classifier.FormatPDF, true},
		{"auto", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := classifier.ParseFormat(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, %v; want %s, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEmailMetadata(t *testing.T) {
	c := newClassifier(t)
	text := "From: sender@corp.example.com\nSubject: urgent request\n\nNeed this ASAP."

	result := c.Classify(text)
	if result.Format != classifier.FormatEmail {
		t.Fatalf("format: got %s, want email", result.Format)
	}

	if v, ok := result.Metadata["urgency_indicators"].(bool); !ok || !v {
		t.Errorf("urgency_indicators: got %v, want true", result.Metadata["urgency_indicators"])
	}
	if v, _ := result.Metadata["sender_domain"].(string); v != "corp.example.com" {
		t.Errorf("sender_domain: got %q, want corp.example.com", v)
	}
}

func TestRulebookOverlay(t *testing.T) {
	rules := classifier.DefaultRulebook()
	overlay := `
intents:
  complaint:
    - grievance
formats:
  email:
    - 'x-mailer:'
`
	if err := rules.MergeOverlay(strings.NewReader(overlay)); err != nil {
		t.Fatalf("merge overlay: %v", err)
	}

	c := classifier.New(rules)
	got := c.Classify("X-Mailer: testclient\nfiling a formal grievance about my order")
	if got.Format != classifier.FormatEmail {
		t.Errorf("overlay format: got %s, want email", got.Format)
	}
	if got.Intent != classifier.IntentComplaint {
		t.Errorf("overlay intent: got %s, want complaint", got.Intent)
	}
}

func TestRulebookOverlayUnknownName(t *testing.T) {
	rules := classifier.DefaultRulebook()
	overlay := "intents:\n  shipping:\n    - tracking\n"

	if err := rules.MergeOverlay(strings.NewReader(overlay)); err == nil {
		t.Error("expected error for unknown intent name")
	}
}
