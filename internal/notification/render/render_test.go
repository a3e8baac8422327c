package render

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	data := map[string]string{
		KeyClientName:   "Maria Silva",
		KeyBillingValue: "R$ 150,00",
		KeyDueDate:      "10/04/2024",
	}

	out := Render("Olá {{client_name}}, sua cobrança de {{billing_value}} vence em {{due_date}}.", data)
	assert.Equal(t, "Olá Maria Silva, sua cobrança de R$ 150,00 vence em 10/04/2024.", out)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	out := Render("Hello {{client_name}}, ref {{mystery_key}}", map[string]string{
		KeyClientName: "Ana",
	})
	assert.Equal(t, "Hello Ana, ref {{mystery_key}}", out)
}

func TestRenderToleratesWhitespaceInsideBraces(t *testing.T) {
	out := Render("Hi {{ client_name }}", map[string]string{KeyClientName: "Ana"})
	assert.Equal(t, "Hi Ana", out)
}

func TestRenderCamelCaseAliases(t *testing.T) {
	data := map[string]string{
		KeyClientName:   "Maria Silva",
		KeyBillingValue: "R$ 150,00",
		KeyDueDate:      "10/04/2024",
	}

	out := Render("Olá {{recipientName}}, {{billingValue}} vence em {{dueDate}}.", data)
	assert.Equal(t, "Olá Maria Silva, R$ 150,00 vence em 10/04/2024.", out)
}

func TestRenderInstallmentKeys(t *testing.T) {
	data := map[string]string{
		KeyInstallments:       "12",
		KeyCurrentInstallment: "2",
		KeyInstallmentLabel:   InstallmentLabel(2, 12),
	}

	out := Render("{{installment_label}} ({{currentInstallment}} de {{installments}})", data)
	assert.Equal(t, "parcela 2/12 (2 de 12)", out)
}

func TestInstallmentLabel(t *testing.T) {
	assert.Equal(t, "parcela 2/12", InstallmentLabel(2, 12))
	assert.Equal(t, "", InstallmentLabel(1, 1))
	assert.Equal(t, "", InstallmentLabel(0, 0))
}

func TestRenderLegacySingleBraceKeys(t *testing.T) {
	data := map[string]string{
		KeyClientName:    "João",
		KeyBillingValue:  "R$ 99,90",
		KeyDueDate:       "05/03/2024",
		KeyPaymentMethod: "PIX",
	}

	out := Render("{nome_cliente}: {valor_cobranca} até {data_vencimento} via {forma_pagamento}", data)
	assert.Equal(t, "João: R$ 99,90 até 05/03/2024 via PIX", out)
}

func TestRenderEmptyData(t *testing.T) {
	out := Render("no placeholders here", nil)
	assert.Equal(t, "no placeholders here", out)
}

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"9.9", "R$ 9,90"},
		{"150", "R$ 150,00"},
		{"1234.5", "R$ 1.234,50"},
		{"1234567.89", "R$ 1.234.567,89"},
		{"-42.1", "-R$ 42,10"},
	}

	for _, tc := range cases {
		amount := decimal.RequireFromString(tc.in)
		assert.Equal(t, tc.want, FormatBRL(amount), "amount %s", tc.in)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.April, 8, 13, 45, 0, 0, time.UTC)
	assert.Equal(t, "08/04/2024", FormatDate(d))
}

func TestPaymentMethodName(t *testing.T) {
	assert.Equal(t, "PIX", PaymentMethodName("pix"))
	assert.Equal(t, "Boleto Bancário", PaymentMethodName("boleto"))
	assert.Equal(t, "crypto", PaymentMethodName("crypto"))
}
