package extract

import (
	"regexp"
	"strings"
)

// Ticket field cascades. Each list runs most specific to most permissive;
// the standalone-number fallback for ticket IDs deliberately comes last so
// a labelled ID on the same line always beats it.
var (
	ticketIDPatterns = Cascade{
		regexp.MustCompile(`(?i)(?:ticket|boleto|comprobante|no\.?|#)\s*:?\s*(\d{6,})`),
		regexp.MustCompile(`(?i)\bid\s*:?\s*(\d{6,})`),
		regexp.MustCompile(`^(\d{8,})$`),
	}

	ticketAmountPatterns = Cascade{
		regexp.MustCompile(`(?i)(?:total|monto|apuesta|amount)\s*:?\s*\$?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`\$\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)([\d,]+\.?\d*)\s*(?:USD|COP|MXN|PEN|EUR)`),
	}

	ticketDatePatterns = Cascade{
		regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(\d{4}[/-]\d{1,2}[/-]\d{1,2})`),
	}

	ticketCurrencyPatterns = Cascade{
		regexp.MustCompile(`(?i)\b(USD|COP|MXN|PEN|EUR)\b`),
	}
)

// ParseTicket extracts betting-ticket fields from recognized text. Scanning
// is line-scoped: lines are walked top to bottom and each field keeps the
// first line where any of its patterns matched. Events is always a non-nil,
// possibly empty, slice.
func ParseTicket(text string) TicketRecord {
	rec := TicketRecord{Events: []string{}}

	lines := splitLines(text)
	scanLines(lines, []lineField{
		{
			cascade: ticketIDPatterns,
			isSet:   func() bool { return rec.TicketID != nil },
			assign:  func(v string) { rec.TicketID = strPtr(v) },
		},
		{
			cascade: ticketAmountPatterns,
			isSet:   func() bool { return rec.Amount != nil },
			assign: func(v string) {
				if d, ok := NormalizeAmount(v); ok {
					rec.Amount = &d
				}
			},
		},
		{
			cascade: ticketDatePatterns,
			isSet:   func() bool { return rec.Date != nil },
			assign:  func(v string) { rec.Date = strPtr(v) },
		},
		{
			cascade: ticketCurrencyPatterns,
			isSet:   func() bool { return rec.Currency != nil },
			assign:  func(v string) { rec.Currency = strPtr(NormalizeCurrency(v)) },
		},
	})

	return rec
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, strings.TrimSpace(l))
	}
	return lines
}
