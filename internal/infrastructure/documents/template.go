package documents

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shadeworks/backend/internal/domain/invoicing"
)

// TemplateEngine renders invoice aggregates into printable HTML.
// It uses Go's html/template package with custom formatting functions.
type TemplateEngine struct {
	tmpl *template.Template
}

// NewTemplateEngine creates a template engine with the built-in invoice layout
func NewTemplateEngine() (*TemplateEngine, error) {
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		// Money and number formatting
		"formatMoney":    formatMoney,
		"formatMoneyRaw": formatMoneyRaw,
		"formatDecimal":  formatDecimal,
		"formatPercent":  formatPercent,

		// Date formatting
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,

		// String utilities
		"upper":      strings.ToUpper,
		"statusText": statusText,
		"labelText":  labelText,
	}).Parse(invoiceTemplate)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse invoice template", err)
	}

	return &TemplateEngine{tmpl: tmpl}, nil
}

// invoiceTemplateData is the data bound to the invoice template
type invoiceTemplateData struct {
	Invoice     *invoicing.Invoice
	Heading     string
	PartyLabel  string
	GeneratedAt time.Time
}

// RenderInvoice renders an invoice to a complete HTML document
func (e *TemplateEngine) RenderInvoice(invoice *invoicing.Invoice) (string, error) {
	if invoice == nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "invoice is nil", nil)
	}

	data := &invoiceTemplateData{
		Invoice:     invoice,
		Heading:     "Invoice",
		PartyLabel:  "Bill To",
		GeneratedAt: time.Now(),
	}
	if invoice.Type == invoicing.InvoiceTypeManufacturer {
		data.Heading = "Manufacturer Invoice"
		data.PartyLabel = "Supplier"
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to render invoice template", err)
	}

	return buf.String(), nil
}

// formatMoney formats a decimal value as US dollars
// Example: 1234.56 -> "$1,234.56"
func formatMoney(v decimal.Decimal) string {
	return "$" + formatMoneyRaw(v)
}

// formatMoneyRaw formats a decimal value as currency without symbol
// Example: 1234.56 -> "1,234.56"
func formatMoneyRaw(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	parts := strings.Split(d.StringFixed(2), ".")
	intPart := parts[0]
	decPart := "00"
	if len(parts) > 1 {
		decPart = parts[1]
	}

	var result strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}

	return sign + result.String() + "." + decPart
}

// formatDecimal formats a decimal with the given precision
func formatDecimal(d decimal.Decimal, precision int) string {
	return d.StringFixed(int32(precision))
}

// formatPercent formats a rate as a percentage
// Example: 0.0725 -> "7.25%"
func formatPercent(d decimal.Decimal, precision int) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(int32(precision)) + "%"
}

// formatDate formats a time as a date string
func formatDate(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// formatDateTime formats a time as a datetime string
func formatDateTime(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func toTime(v interface{}) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	default:
		return time.Time{}
	}
}

// statusText converts a machine status to display form
// Example: "partially_paid" -> "Partially Paid"
func statusText(v interface{}) string {
	s := strings.ReplaceAll(strings.TrimSpace(toString(v)), "_", " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.AmericanEnglish).String(s)
}

// labelText title-cases option and accessory names as captured at checkout
// Example: "blackout liner" -> "Blackout Liner"
func labelText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Title(language.AmericanEnglish).String(s)
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case invoicing.InvoiceStatus:
		return string(val)
	case invoicing.InvoiceType:
		return string(val)
	default:
		return ""
	}
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{ .Invoice.InvoiceNumber }}</title>
<style>
  body { font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; color: #1f2430; font-size: 12px; margin: 0; }
  .header { display: flex; justify-content: space-between; border-bottom: 3px solid #1f2430; padding-bottom: 16px; }
  .brand { font-size: 22px; font-weight: 700; letter-spacing: 1px; }
  .meta { text-align: right; }
  .meta h1 { margin: 0 0 4px; font-size: 18px; text-transform: uppercase; }
  .meta .number { font-size: 14px; font-weight: 600; }
  .meta .status { display: inline-block; margin-top: 6px; padding: 2px 10px; border: 1px solid #1f2430; border-radius: 3px; font-size: 11px; text-transform: uppercase; }
  .parties { margin: 20px 0; }
  .parties .label { font-size: 10px; text-transform: uppercase; color: #6b7280; margin-bottom: 4px; }
  .parties .name { font-weight: 600; }
  table.items { width: 100%; border-collapse: collapse; margin-top: 16px; }
  table.items th { text-align: left; font-size: 10px; text-transform: uppercase; color: #6b7280; border-bottom: 2px solid #1f2430; padding: 6px 8px; }
  table.items td { padding: 6px 8px; border-bottom: 1px solid #e5e7eb; vertical-align: top; }
  table.items td.num, table.items th.num { text-align: right; }
  .extras { color: #6b7280; font-size: 11px; margin-top: 2px; }
  .totals { width: 280px; margin-left: auto; margin-top: 12px; }
  .totals td { padding: 4px 8px; }
  .totals td.num { text-align: right; }
  .totals tr.grand td { border-top: 2px solid #1f2430; font-weight: 700; font-size: 14px; }
  .totals tr.due td { font-weight: 600; }
  .payments { margin-top: 24px; }
  .payments h2, .notes h2 { font-size: 11px; text-transform: uppercase; color: #6b7280; margin-bottom: 6px; }
  table.payments-table { width: 100%; border-collapse: collapse; }
  table.payments-table th { text-align: left; font-size: 10px; text-transform: uppercase; color: #6b7280; border-bottom: 1px solid #1f2430; padding: 4px 8px; }
  table.payments-table td { padding: 4px 8px; border-bottom: 1px solid #e5e7eb; }
  .notes { margin-top: 24px; }
  .footer { margin-top: 36px; padding-top: 8px; border-top: 1px solid #e5e7eb; color: #9ca3af; font-size: 10px; }
</style>
</head>
<body>
  <div class="header">
    <div>
      <div class="brand">Shadeworks</div>
      <div>Custom Window Shades</div>
    </div>
    <div class="meta">
      <h1>{{ .Heading }}</h1>
      <div class="number">{{ .Invoice.InvoiceNumber }}</div>
      <div>Order {{ .Invoice.OrderNumber }}</div>
      <div class="status">{{ statusText .Invoice.Status }}</div>
    </div>
  </div>

  <div class="parties">
    <div class="label">{{ .PartyLabel }}</div>
    <div class="name">{{ .Invoice.Customer.Name }}</div>
    {{ with .Invoice.Customer.Email }}<div>{{ . }}</div>{{ end }}
    {{ with .Invoice.Customer.Phone }}<div>{{ . }}</div>{{ end }}
    {{ if not .Invoice.Customer.Address.IsEmpty }}
    <div>{{ .Invoice.Customer.Address.Street1 }}</div>
    {{ with .Invoice.Customer.Address.Street2 }}<div>{{ . }}</div>{{ end }}
    <div>{{ .Invoice.Customer.Address.CityStateZip }}</div>
    {{ end }}
  </div>

  <div>
    <div><strong>Issue Date:</strong> {{ formatDate .Invoice.IssueDate }}</div>
    {{ with .Invoice.DueDate }}<div><strong>Due Date:</strong> {{ formatDate . }}</div>{{ end }}
  </div>

  <table class="items">
    <thead>
      <tr>
        <th>Item</th>
        <th>Room</th>
        <th class="num">W &times; H (in)</th>
        <th class="num">Qty</th>
        <th class="num">Unit Price</th>
        <th class="num">Amount</th>
      </tr>
    </thead>
    <tbody>
      {{ range .Invoice.Items }}
      <tr>
        <td>
          {{ .ProductName }}
          {{ range .Options }}<div class="extras">{{ statusText .Type }}{{ with .Name }}: {{ labelText . }}{{ end }} ({{ formatMoney .Price }})</div>{{ end }}
          {{ range .Accessories }}<div class="extras">{{ labelText .Name }}{{ if gt .Quantity 1 }} &times; {{ .Quantity }}{{ end }} ({{ formatMoney .Price }})</div>{{ end }}
        </td>
        <td>{{ .RoomLabel }}</td>
        <td class="num">{{ formatDecimal .WidthIn 2 }} &times; {{ formatDecimal .HeightIn 2 }}</td>
        <td class="num">{{ .Quantity }}</td>
        <td class="num">{{ formatMoney .UnitPrice }}</td>
        <td class="num">{{ formatMoney .LineTotal }}</td>
      </tr>
      {{ end }}
    </tbody>
  </table>

  <table class="totals">
    <tr><td>Subtotal</td><td class="num">{{ formatMoney .Invoice.Subtotal }}</td></tr>
    {{ if not .Invoice.Discount.IsZero }}<tr><td>Discount</td><td class="num">-{{ formatMoney .Invoice.Discount }}</td></tr>{{ end }}
    {{ if not .Invoice.Shipping.IsZero }}<tr><td>Shipping</td><td class="num">{{ formatMoney .Invoice.Shipping }}</td></tr>{{ end }}
    {{ if not .Invoice.Tax.IsZero }}<tr><td>Tax ({{ formatPercent .Invoice.TaxRate 2 }})</td><td class="num">{{ formatMoney .Invoice.Tax }}</td></tr>{{ end }}
    <tr class="grand"><td>Total</td><td class="num">{{ formatMoney .Invoice.Total }}</td></tr>
    <tr><td>Amount Paid</td><td class="num">{{ formatMoney .Invoice.AmountPaid }}</td></tr>
    <tr class="due"><td>Amount Due</td><td class="num">{{ formatMoney .Invoice.AmountDue }}</td></tr>
  </table>

  {{ if .Invoice.Payments }}
  <div class="payments">
    <h2>Payments</h2>
    <table class="payments-table">
      <thead>
        <tr><th>Date</th><th>Method</th><th>Reference</th><th class="num">Amount</th></tr>
      </thead>
      <tbody>
        {{ range .Invoice.Payments }}
        <tr>
          <td>{{ formatDate .PaidAt }}</td>
          <td>{{ statusText .Method }}</td>
          <td>{{ .Reference }}</td>
          <td class="num">{{ formatMoney .Amount }}</td>
        </tr>
        {{ end }}
      </tbody>
    </table>
  </div>
  {{ end }}

  {{ with .Invoice.Notes }}
  <div class="notes">
    <h2>Notes</h2>
    <div>{{ . }}</div>
  </div>
  {{ end }}

  <div class="footer">
    Generated {{ formatDateTime .GeneratedAt }} &middot; {{ .Invoice.InvoiceNumber }}
  </div>
</body>
</html>
`
