package agents

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docroute/docroute/internal/classifier"
)

// Urgency is the email severity tier.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Tone is the email sentiment category.
type Tone string

const (
	TonePolite      Tone = "polite"
	ToneNeutral     Tone = "neutral"
	ToneEscalation  Tone = "escalation"
	ToneThreatening Tone = "threatening"
	ToneAngry       Tone = "angry"
)

// EmailData is the structured record extracted from an email document.
type EmailData struct {
	Sender          string            `json:"sender" msgpack:"sender"`
	Subject         string            `json:"subject" msgpack:"subject"`
	Body            string            `json:"body" msgpack:"body"`
	Urgency         Urgency           `json:"urgency" msgpack:"urgency"`
	Tone            Tone              `json:"tone" msgpack:"tone"`
	Timestamp       time.Time         `json:"timestamp" msgpack:"timestamp"`
	ExtractedFields map[string]string `json:"extracted_fields" msgpack:"extracted_fields"`
}

var (
	senderRe    = regexp.MustCompile(`(?i)from:\s*([\w.-]+@[\w.-]+\.\w+)`)
	subjectRe   = regexp.MustCompile(`(?i)subject:\s*(.+)`)
	recipientRe = regexp.MustCompile(`(?i)to:\s*([\w.-]+@[\w.-]+\.\w+)`)
	requestRe   = regexp.MustCompile(`(?i)request(?:ing)?\s+([^.]+)`)
	issueRe     = regexp.MustCompile(`(?i)(?:problem|issue)\s+(?:is\s+)?([^.]+)`)
	bodySplitRe = regexp.MustCompile(`(?is)subject:.*?\n\s*\n`)
	bangRe      = regexp.MustCompile(`!{2,}`)
	deadlineRe  = regexp.MustCompile(`(?i)by\s+(?:today|tomorrow|end of day|eod)`)
	capsWordRe  = regexp.MustCompile(`\b[A-Z]{3,}\b`)
)

// urgencyTier and toneTier tables are consulted in declaration order; the
// first tier with any matching keyword wins.
type urgencyTier struct {
	level    Urgency
	keywords []string
}

type toneTier struct {
	tone     Tone
	keywords []string
}

// EmailAgent extracts sender, subject, and body from header-style email
// text and scores urgency and tone against keyword tiers.
type EmailAgent struct {
	id           uuid.UUID
	urgencyTiers []urgencyTier
	toneTiers    []toneTier
	politeWords  []string
}

// NewEmailAgent creates an EmailAgent with the built-in keyword tiers.
func NewEmailAgent() *EmailAgent {
	return &EmailAgent{
		id: uuid.New(),
		urgencyTiers: []urgencyTier{
			{UrgencyCritical, []string{"critical", "emergency", "urgent", "asap", "immediate"}},
			{UrgencyHigh, []string{"important", "priority", "soon", "quickly", "expedite"}},
			{UrgencyMedium, []string{"please", "when possible", "at your convenience"}},
			{UrgencyLow, []string{"whenever", "no rush", "low priority"}},
		},
		toneTiers: []toneTier{
			{ToneThreatening, []string{"lawsuit", "legal action", "consequences", "unacceptable"}},
			{ToneAngry, []string{"furious", "outraged", "disgusted", "terrible", "awful"}},
			{ToneEscalation, []string{"manager", "supervisor", "escalate", "complaint"}},
			{TonePolite, []string{"please", "thank you", "appreciate", "kindly"}},
		},
		politeWords: []string{"please", "thank", "appreciate"},
	}
}

func (a *EmailAgent) Name() string { return "EmailAgent" }

func (a *EmailAgent) Format() classifier.Format { return classifier.FormatEmail }

func (a *EmailAgent) Capabilities() []string {
	return []string{"email_parsing", "urgency_scoring", "tone_scoring"}
}

// Process extracts email fields and determines urgency and tone, then maps
// the (urgency, tone) pair to recommended actions.
func (a *EmailAgent) Process(text string, classification classifier.Result) *Result {
	fields := a.extractFields(text)
	urgency := a.determineUrgency(text)
	tone := a.determineTone(text)

	sender := fields["sender"]
	if sender == "" {
		sender = "unknown@example.com"
	}
	subject := fields["subject"]
	if subject == "" {
		subject = "No Subject"
	}
	body := fields["body"]
	if body == "" {
		body = text
	}

	return &Result{
		AgentName: a.Name(),
		Email: &EmailData{
			Sender:          sender,
			Subject:         subject,
			Body:            body,
			Urgency:         urgency,
			Tone:            tone,
			Timestamp:       time.Now(),
			ExtractedFields: fields,
		},
		RecommendedActions: recommendEmailActions(urgency, tone),
		ProcessingMetadata: map[string]any{
			"agent_id":       a.id.String(),
			"confidence":     classification.Confidence,
			"keywords_found": a.keywordsFound(text),
		},
	}
}

func (a *EmailAgent) extractFields(text string) map[string]string {
	fields := map[string]string{}

	if m := senderRe.FindStringSubmatch(text); m != nil {
		fields["sender"] = m[1]
	}
	if m := subjectRe.FindStringSubmatch(text); m != nil {
		fields["subject"] = strings.TrimSpace(m[1])
	}
	if m := recipientRe.FindStringSubmatch(text); m != nil {
		fields["recipient"] = m[1]
	}

	// Body is everything after the first blank line following the subject
	// header; header-less input is carried whole.
	if loc := bodySplitRe.FindStringIndex(text); loc != nil {
		fields["body"] = strings.TrimSpace(text[loc[1]:])
	} else {
		fields["body"] = strings.TrimSpace(text)
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "request") {
		if m := requestRe.FindStringSubmatch(text); m != nil {
			fields["request"] = strings.TrimSpace(m[1])
		}
	}
	if strings.Contains(lower, "problem") || strings.Contains(lower, "issue") {
		if m := issueRe.FindStringSubmatch(text); m != nil {
			fields["issue"] = strings.TrimSpace(m[1])
		}
	}

	return fields
}

// determineUrgency walks the keyword tiers in severity order; when no
// keyword matches, structural signals (doubled exclamation marks or a
// same-day deadline phrase) force high, and medium is the default.
func (a *EmailAgent) determineUrgency(text string) Urgency {
	lower := strings.ToLower(text)

	for _, tier := range a.urgencyTiers {
		if containsAny(lower, tier.keywords) {
			return tier.level
		}
	}

	if bangRe.MatchString(text) {
		return UrgencyHigh
	}
	if deadlineRe.MatchString(lower) {
		return UrgencyHigh
	}

	return UrgencyMedium
}

// determineTone walks the tone tiers in precedence order; with no keyword
// match, a high ratio of shouted words forces angry, polite indicators
// yield polite, and neutral is the default.
func (a *EmailAgent) determineTone(text string) Tone {
	lower := strings.ToLower(text)

	for _, tier := range a.toneTiers {
		if containsAny(lower, tier.keywords) {
			return tier.tone
		}
	}

	capsWords := len(capsWordRe.FindAllString(text, -1))
	totalWords := len(strings.Fields(text))
	if totalWords > 0 && float64(capsWords)/float64(totalWords) > 0.3 {
		return ToneAngry
	}

	if containsAny(lower, a.politeWords) {
		return TonePolite
	}

	return ToneNeutral
}

// recommendEmailActions is the fixed (urgency, tone) decision table,
// evaluated in priority order.
func recommendEmailActions(urgency Urgency, tone Tone) []string {
	switch {
	case urgency == UrgencyCritical || tone == ToneThreatening || tone == ToneAngry:
		return []string{"escalate_to_manager", "create_priority_ticket"}
	case urgency == UrgencyHigh || tone == ToneEscalation:
		return []string{"create_high_priority_ticket", "notify_team_lead"}
	case tone == TonePolite && (urgency == UrgencyLow || urgency == UrgencyMedium):
		return []string{"standard_response", "log_and_track"}
	default:
		return []string{"standard_processing"}
	}
}

func (a *EmailAgent) keywordsFound(text string) map[string][]string {
	found := map[string][]string{
		"urgency": {},
		"tone":    {},
	}

	for _, tier := range a.urgencyTiers {
		found["urgency"] = append(found["urgency"], keywordsIn(text, tier.keywords)...)
	}
	for _, tier := range a.toneTiers {
		found["tone"] = append(found["tone"], keywordsIn(text, tier.keywords)...)
	}

	return found
}
