package agents

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/docroute/docroute/internal/classifier"
)

// DefaultMaxStoredText caps the extracted text carried inside a PDFData
// record; the full text is never persisted beyond this prefix.
const DefaultMaxStoredText = 500

// LineItem is a best-effort invoice line extracted from document text.
type LineItem struct {
	Quantity    int     `json:"quantity" msgpack:"quantity"`
	Description string  `json:"description" msgpack:"description"`
	Amount      float64 `json:"amount" msgpack:"amount"`
}

// PDFData is the structured record extracted from PDF-derived text.
type PDFData struct {
	DocumentType    string         `json:"document_type" msgpack:"document_type"`
	ExtractedText   string         `json:"extracted_text" msgpack:"extracted_text"`
	LineItems       []LineItem     `json:"line_items" msgpack:"line_items"`
	TotalAmount     *float64       `json:"total_amount" msgpack:"total_amount"`
	Flags           []string       `json:"flags" msgpack:"flags"`
	ExtractedFields map[string]any `json:"extracted_fields" msgpack:"extracted_fields"`
}

var (
	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total[:\s]+\$?(\d+(?:,\d{3})*(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)amount due[:\s]+\$?(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	}
	invoiceNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)invoice\s*#?\s*:?\s*(\w+)`),
		regexp.MustCompile(`(?i)inv\s*#?\s*:?\s*(\w+)`),
	}
	vendorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)from[:\s]+(.+)`),
		regexp.MustCompile(`(?i)vendor[:\s]+(.+)`),
	}

	// Deliberately lenient: unanchored, so arbitrary "number text number"
	// sequences may be harvested as line items. Consumers treat these as
	// best-effort.
	lineItemRe = regexp.MustCompile(`(\d+)\s+(.+?)\s+\$?(\d+(?:,\d{3})*(?:\.\d{2})?)`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`),
		regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
	}
	dollarAmountRe = regexp.MustCompile(`\$(\d+(?:,\d{3})*(?:\.\d{2})?)`)
	emailAddrRe    = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)
	phoneRe        = regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}\b`)
	keyValueRe     = regexp.MustCompile(`(\w+):\s*([^\n]+)`)
	ssnRe          = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	creditCardRe   = regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`)
	urgentRe       = regexp.MustCompile(`(?i)urgent|asap|immediate|critical`)
)

// docTypeRule maps a document type to its signal keywords; rules are
// checked in declaration order and the first hit wins.
type docTypeRule struct {
	docType  string
	keywords []string
}

// PDFAgent classifies PDF-derived text into a document type, extracts
// invoice data, and runs the compliance and risk flag battery.
type PDFAgent struct {
	id                 uuid.UUID
	maxStoredText      int
	docTypes           []docTypeRule
	complianceKeywords []string
}

// NewPDFAgent creates a PDFAgent. maxStoredText bounds the text retained
// in results; zero or less selects DefaultMaxStoredText.
func NewPDFAgent(maxStoredText int) *PDFAgent {
	if maxStoredText <= 0 {
		maxStoredText = DefaultMaxStoredText
	}
	return &PDFAgent{
		id:            uuid.New(),
		maxStoredText: maxStoredText,
		docTypes: []docTypeRule{
			{"invoice", []string{"invoice", "bill", "payment", "amount due"}},
			{"policy", []string{"policy", "regulation", "compliance", "gdpr", "fda"}},
			{"contract", []string{"contract", "agreement", "terms"}},
			{"report", []string{"report", "analysis", "summary"}},
		},
		complianceKeywords: []string{
			"gdpr", "fda", "sox", "hipaa", "pci", "compliance",
			"regulation", "policy", "audit", "security",
		},
	}
}

func (a *PDFAgent) Name() string { return "PDFAgent" }

func (a *PDFAgent) Format() classifier.Format { return classifier.FormatPDF }

func (a *PDFAgent) Capabilities() []string {
	return []string{"document_typing", "invoice_extraction", "compliance_flagging"}
}

// Process determines the document type, extracts invoice data when
// applicable, and evaluates the flag battery.
func (a *PDFAgent) Process(text string, classification classifier.Result) *Result {
	docType := a.determineDocumentType(text)

	var lineItems []LineItem
	var totalAmount *float64
	if docType == "invoice" {
		lineItems, totalAmount = extractInvoiceData(text)
	}

	flags := a.complianceFlags(text, docType, totalAmount)

	return &Result{
		AgentName: a.Name(),
		PDF: &PDFData{
			DocumentType:    docType,
			ExtractedText:   truncate(text, a.maxStoredText),
			LineItems:       lineItems,
			TotalAmount:     totalAmount,
			Flags:           flags,
			ExtractedFields: a.extractGeneralFields(text, docType),
		},
		RecommendedActions: recommendPDFActions(flags),
		ProcessingMetadata: map[string]any{
			"agent_id":    a.id.String(),
			"text_length": len(text),
			"line_count":  len(strings.Split(text, "\n")),
			"confidence":  classification.Confidence,
		},
	}
}

func (a *PDFAgent) determineDocumentType(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range a.docTypes {
		if containsAny(lower, rule.keywords) {
			return rule.docType
		}
	}
	return "document"
}

// extractInvoiceData finds the total via the ordered total patterns
// (a pattern whose capture fails to parse is skipped) and harvests line
// items with the generic quantity/description/amount pattern.
func extractInvoiceData(text string) ([]LineItem, *float64) {
	var total *float64
	for _, re := range totalPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		total = &amount
		break
	}

	var items []LineItem
	for _, m := range lineItemRe.FindAllStringSubmatch(text, -1) {
		qty, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(m[3], ",", ""), 64)
		if err != nil {
			continue
		}
		items = append(items, LineItem{
			Quantity:    qty,
			Description: strings.TrimSpace(m[2]),
			Amount:      amount,
		})
	}

	return items, total
}

// complianceFlags evaluates the fixed battery; flags are independent and
// accumulate.
func (a *PDFAgent) complianceFlags(text, docType string, total *float64) []string {
	flags := []string{}
	lower := strings.ToLower(text)

	if docType == "invoice" && total != nil && *total > 10000 {
		flags = append(flags, "high_value_invoice")
	}

	if found := keywordsIn(text, a.complianceKeywords); len(found) > 0 {
		flags = append(flags, "compliance_document")
		for _, kw := range found {
			flags = append(flags, "contains_"+strings.ToLower(kw))
		}
	}

	if strings.Contains(lower, "gdpr") {
		flags = append(flags, "gdpr_related")
	}
	if strings.Contains(lower, "fda") {
		flags = append(flags, "fda_related")
	}
	if strings.Contains(lower, "sox") {
		flags = append(flags, "sox_compliance")
	}

	if ssnRe.MatchString(text) {
		flags = append(flags, "contains_ssn")
	}
	if creditCardRe.MatchString(text) {
		flags = append(flags, "contains_credit_card")
	}

	if urgentRe.MatchString(text) {
		flags = append(flags, "urgent_document")
	}

	return flags
}

func (a *PDFAgent) extractGeneralFields(text, docType string) map[string]any {
	fields := map[string]any{}

	var dates []string
	for _, re := range datePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			dates = append(dates, m[1])
		}
	}
	if len(dates) > 0 {
		fields["dates_found"] = capStrings(dates, 5)
	}

	var amounts []float64
	for _, m := range dollarAmountRe.FindAllStringSubmatch(text, -1) {
		if len(amounts) >= 10 {
			break
		}
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			amounts = append(amounts, v)
		}
	}
	if len(amounts) > 0 {
		fields["amounts_found"] = amounts
	}

	if emails := emailAddrRe.FindAllString(text, -1); len(emails) > 0 {
		fields["emails_found"] = emails
	}
	if phones := phoneRe.FindAllString(text, -1); len(phones) > 0 {
		fields["phones_found"] = phones
	}

	if docType == "invoice" {
		for _, re := range invoiceNumberPatterns {
			if m := re.FindStringSubmatch(text); m != nil {
				fields["invoice_number"] = m[1]
				break
			}
		}
		for _, re := range vendorPatterns {
			if m := re.FindStringSubmatch(text); m != nil {
				fields["vendor"] = strings.TrimSpace(m[1])
				break
			}
		}
	}

	kv := map[string]string{}
	for _, m := range keyValueRe.FindAllStringSubmatch(text, -1) {
		if len(kv) >= 10 {
			break
		}
		kv[m[1]] = strings.TrimSpace(m[2])
	}
	if len(kv) > 0 {
		fields["key_value_pairs"] = kv
	}

	return fields
}

// recommendPDFActions is a fixed additive mapping from flags to actions.
func recommendPDFActions(flags []string) []string {
	set := map[string]bool{}
	for _, f := range flags {
		set[f] = true
	}

	actions := []string{}

	if set["high_value_invoice"] {
		actions = append(actions, "require_manager_approval", "flag_financial_review")
	}
	if set["compliance_document"] {
		actions = append(actions, "route_to_compliance_team", "log_regulatory_document")
	}
	if set["gdpr_related"] {
		actions = append(actions, "notify_data_protection_officer", "ensure_gdpr_compliance")
	}
	if set["fda_related"] {
		actions = append(actions, "route_to_regulatory_affairs", "maintain_fda_audit_trail")
	}
	if set["contains_ssn"] || set["contains_credit_card"] {
		actions = append(actions, "encrypt_and_secure", "limit_access_permissions")
	}
	if set["urgent_document"] {
		actions = append(actions, "prioritize_processing", "notify_relevant_teams")
	}

	if len(actions) == 0 {
		actions = append(actions, "standard_document_processing", "archive_after_processing")
	}

	return actions
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func capStrings(values []string, limit int) []string {
	if len(values) > limit {
		return values[:limit]
	}
	return values
}

// String implements fmt.Stringer for logging line items compactly.
func (li LineItem) String() string {
	return fmt.Sprintf("%dx %s $%.2f", li.Quantity, li.Description, li.Amount)
}
