package extract

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTicket_LabelledFields(t *testing.T) {
	text := "Ticket: 12345678\nTotal: $50,000.00\nFecha: 01/02/2024\nCOP"

	rec := ParseTicket(text)

	require.NotNil(t, rec.TicketID)
	assert.Equal(t, "12345678", *rec.TicketID)

	require.NotNil(t, rec.Amount)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("50000.00")),
		"amount = %s", rec.Amount)

	require.NotNil(t, rec.Date)
	assert.Equal(t, "01/02/2024", *rec.Date)

	require.NotNil(t, rec.Currency)
	assert.Equal(t, "COP", *rec.Currency)

	require.NotNil(t, rec.Events)
	assert.Empty(t, rec.Events)
}

func TestParseTicket_FirstLineWinsOverPatternOrder(t *testing.T) {
	// Line 1 matches only the standalone-number fallback, line 2 the
	// labelled pattern at the front of the cascade. Line order takes
	// precedence.
	text := "87654321\nTicket: 12345678"

	rec := ParseTicket(text)

	require.NotNil(t, rec.TicketID)
	assert.Equal(t, "87654321", *rec.TicketID)
}

func TestParseTicket_LabelledBeatsStandaloneOnSameLine(t *testing.T) {
	rec := ParseTicket("Boleto 00112233")

	require.NotNil(t, rec.TicketID)
	assert.Equal(t, "00112233", *rec.TicketID)
}

func TestParseTicket_NoMatchesLeavesFieldsUnset(t *testing.T) {
	rec := ParseTicket("nada que ver aqui")

	assert.Nil(t, rec.TicketID)
	assert.Nil(t, rec.Amount)
	assert.Nil(t, rec.Date)
	assert.Nil(t, rec.Currency)
	assert.NotNil(t, rec.Events)
}

func TestParseTicket_UnparsableAmountIsAbsorbed(t *testing.T) {
	// "," alone matches the amount pattern but does not parse as a
	// number. The field stays unset and a later line can still fill it.
	rec := ParseTicket("Total: $,\nMonto: 120.50")

	require.NotNil(t, rec.Amount)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("120.50")))
}

func TestParseTicket_AmountBeforeCurrencyCode(t *testing.T) {
	rec := ParseTicket("1,250.75 USD")

	require.NotNil(t, rec.Amount)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("1250.75")))
	require.NotNil(t, rec.Currency)
	assert.Equal(t, "USD", *rec.Currency)
}

func TestParseTicket_CurrencyIgnoresBareDollarSign(t *testing.T) {
	// A lone "$" is not a 3-letter code and must not claim the currency
	// field before an explicit code appears on a later line.
	rec := ParseTicket("Total: $500\ncop")

	require.NotNil(t, rec.Currency)
	assert.Equal(t, "COP", *rec.Currency)
}

func TestParseTicket_DateFormats(t *testing.T) {
	for _, tc := range []struct {
		text string
		want string
	}{
		{"Fecha: 01/02/2024", "01/02/2024"},
		{"Fecha: 1-2-24", "1-2-24"},
		// The day-first pattern leads the cascade, so a year-first date
		// is matched from its third digit onward.
		{"2024/02/01 sorteo", "24/02/01"},
	} {
		rec := ParseTicket(tc.text)
		require.NotNil(t, rec.Date, tc.text)
		assert.Equal(t, tc.want, *rec.Date, tc.text)
	}
}

func TestParseDocument_ColombianID(t *testing.T) {
	text := "REPUBLICA DE COLOMBIA\n" +
		"CEDULA DE CIUDADANIA\n" +
		"NUMERO: 1.234.567.890\n" +
		"APELLIDOS: PEREZ GOMEZ\n" +
		"NOMBRES: JUAN CARLOS\n" +
		"FECHA NACIMIENTO: 15/03/1990"

	rec := ParseDocument(text)

	require.NotNil(t, rec.DocumentNumber)
	assert.Equal(t, "1234567890", *rec.DocumentNumber)

	require.NotNil(t, rec.FirstName)
	assert.Equal(t, "JUAN CARLOS", *rec.FirstName)
	require.NotNil(t, rec.LastName)
	assert.Equal(t, "PEREZ GOMEZ", *rec.LastName)
	require.NotNil(t, rec.FullName)
	assert.Equal(t, "JUAN CARLOS PEREZ GOMEZ", *rec.FullName)

	require.NotNil(t, rec.DateOfBirth)
	assert.Equal(t, "15/03/1990", *rec.DateOfBirth)
}

func TestParseDocument_ShortDigitRunFallsThroughCascade(t *testing.T) {
	// "ID: 123" matches the first pattern but is too short once
	// separators are stripped, so the standalone-line fallback supplies
	// the number instead.
	text := "ID: 123\n55443322\nfin"

	rec := ParseDocument(text)

	require.NotNil(t, rec.DocumentNumber)
	assert.Equal(t, "55443322", *rec.DocumentNumber)
}

func TestParseDocument_NoNumberLeavesFieldUnset(t *testing.T) {
	rec := ParseDocument("APELLIDOS: SOLANO\nsin numero visible")

	assert.Nil(t, rec.DocumentNumber)
	require.NotNil(t, rec.LastName)
	assert.Equal(t, "SOLANO", *rec.LastName)
	assert.Nil(t, rec.FullName)
}

func TestParseDocument_ExpirationAndNationality(t *testing.T) {
	text := "DNI: 44556677\nVENCIMIENTO: 01/01/2030\nNACIONALIDAD: COLOMBIANA"

	rec := ParseDocument(text)

	require.NotNil(t, rec.ExpirationDate)
	assert.Equal(t, "01/01/2030", *rec.ExpirationDate)
	require.NotNil(t, rec.Nationality)
	assert.Equal(t, "COLOMBIANA", *rec.Nationality)
}

func TestParseDocument_ExpirationDateKeptVerbatim(t *testing.T) {
	for _, text := range []string{
		"VENCIMIENTO: 01/01/2030",
		"VALID UNTIL: 01/01/2030",
		"EXPIRA: 01/01/2030",
	} {
		rec := ParseDocument(text)
		require.NotNil(t, rec.ExpirationDate, text)
		assert.Equal(t, "01/01/2030", *rec.ExpirationDate, text)
	}
}

func TestParseDocument_NamesDoNotSpanLines(t *testing.T) {
	text := "NOMBRES: MARIA\nOTRA LINEA"

	rec := ParseDocument(text)

	require.NotNil(t, rec.FirstName)
	assert.Equal(t, "MARIA", *rec.FirstName)
}

func TestNormalizeAmount(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
		ok   bool
	}{
		{"50,000.00", "50000.00", true},
		{"120.5", "120.5", true},
		{"1,2,3", "123", true},
		{"abc", "", false},
		{",", "", false},
		{"", "", false},
	} {
		got, ok := NormalizeAmount(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), tc.in)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+573001112233", NormalizePhone("+57 300 111-22-33"))
	assert.Equal(t, "3001112233", NormalizePhone("(300) 111 22 33"))
	assert.Equal(t, "", NormalizePhone("+"))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "1234567890", DigitsOnly("1.234.567-890"))
	assert.Equal(t, "", DigitsOnly("sin digitos"))
}

func TestCascade_FirstMatchOrder(t *testing.T) {
	c := ticketAmountPatterns

	v, ok := c.FirstMatch("Total: 100 y ademas $200")
	require.True(t, ok)
	assert.Equal(t, "100", v, "earlier pattern wins even when a later one also matches")
}
