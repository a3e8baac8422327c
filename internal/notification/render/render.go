package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Template data keys understood by Render.
const (
	KeyClientName         = "client_name"
	KeyBillingValue       = "billing_value"
	KeyDueDate            = "due_date"
	KeyPaymentMethod      = "payment_method"
	KeyDescription        = "description"
	KeyDaysBefore         = "days_before"
	KeyInstallments       = "installments"
	KeyCurrentInstallment = "current_installment"
	KeyInstallmentLabel   = "installment_label"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// aliasKeys maps the camelCase placeholder names accepted in {{key}}
// templates onto the canonical snake_case data keys.
var aliasKeys = map[string]string{
	"recipientName":      KeyClientName,
	"billingValue":       KeyBillingValue,
	"dueDate":            KeyDueDate,
	"paymentMethod":      KeyPaymentMethod,
	"daysBefore":         KeyDaysBefore,
	"currentInstallment": KeyCurrentInstallment,
	"installmentLabel":   KeyInstallmentLabel,
}

// legacyKeys maps placeholder names that predate the {{key}} syntax onto
// the canonical keys, so templates authored against the old single-brace
// format keep rendering.
var legacyKeys = map[string]string{
	"nome_cliente":    KeyClientName,
	"valor_cobranca":  KeyBillingValue,
	"data_vencimento": KeyDueDate,
	"forma_pagamento": KeyPaymentMethod,
	"descricao":       KeyDescription,
	"dias_antes":      KeyDaysBefore,
	"parcela":         KeyInstallmentLabel,
}

var legacyRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

func lookup(data map[string]string, key string) (string, bool) {
	if value, ok := data[key]; ok {
		return value, true
	}
	if canonical, ok := aliasKeys[key]; ok {
		value, ok := data[canonical]
		return value, ok
	}
	return "", false
}

// Render substitutes {{key}} placeholders in text with values from data.
// Both canonical snake_case keys and their camelCase aliases are
// accepted. Unknown placeholders are left intact so a typo in a template
// is visible in the delivered message instead of silently vanishing.
func Render(text string, data map[string]string) string {
	out := placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		if value, ok := lookup(data, key); ok {
			return value
		}
		return match
	})
	return legacyRe.ReplaceAllStringFunc(out, func(match string) string {
		key := legacyRe.FindStringSubmatch(match)[1]
		canonical, ok := legacyKeys[key]
		if !ok {
			canonical = key
		}
		if value, ok := lookup(data, canonical); ok {
			return value
		}
		return match
	})
}

// InstallmentLabel formats an installment position as "parcela 2/12".
// Single-installment billings get an empty label so templates that never
// mention installments stay unchanged.
func InstallmentLabel(current, total int) string {
	if total <= 1 {
		return ""
	}
	return fmt.Sprintf("parcela %d/%d", current, total)
}

// FormatBRL renders a decimal amount in Brazilian currency notation,
// e.g. 1234.5 -> "R$ 1.234,50".
func FormatBRL(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, b.String(), fracPart)
}

// FormatDate renders a date as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

var paymentMethodNames = map[string]string{
	"pix":         "PIX",
	"boleto":      "Boleto Bancário",
	"credit_card": "Cartão de Crédito",
	"debit_card":  "Cartão de Débito",
	"transfer":    "Transferência Bancária",
	"cash":        "Dinheiro",
}

// PaymentMethodName maps a stored payment method code to its display name.
// Unrecognized codes are returned as-is.
func PaymentMethodName(code string) string {
	if name, ok := paymentMethodNames[code]; ok {
		return name
	}
	return code
}
