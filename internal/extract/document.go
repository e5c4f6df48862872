package extract

import "regexp"

// Document field cascades. Document extraction is whole-text scoped: each
// cascade searches the entire cleaned text, so a label and its value may
// sit far apart vertically without breaking the match. Name captures use an
// explicit space class instead of \s so a name never swallows the next
// line.
var (
	documentNumberPatterns = Cascade{
		regexp.MustCompile(`(?im)(?:cedula|c\.?c\.?|documento|dni|id)\s*:?\s*#?\s*([\d.-]+)`),
		regexp.MustCompile(`(?im)(?:numero|no\.?)\s*:?\s*([\d.-]+)`),
		regexp.MustCompile(`(?m)^(\d{6,12})$`),
	}

	firstNamePatterns = Cascade{
		regexp.MustCompile(`(?i)(?:nombres?|first name)[: ]+([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑa-záéíóúñ ]+)`),
	}

	lastNamePatterns = Cascade{
		regexp.MustCompile(`(?i)(?:apellidos?|last name|surname)[: ]+([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑa-záéíóúñ ]+)`),
	}

	birthDatePatterns = Cascade{
		regexp.MustCompile(`(?i)(?:nacimiento|birth|fecha nac)[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	}

	expirationDatePatterns = Cascade{
		// The optional word between label and value covers forms like
		// "VALID UNTIL"; it must not admit digits or it eats into the date.
		regexp.MustCompile(`(?i)(?:vencimiento|expira|expiry|valid)[:\s]*[a-záéíóúñ]*[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	}

	nationalityPatterns = Cascade{
		regexp.MustCompile(`(?i)(?:nacionalidad|nationality)[: ]+([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑa-záéíóúñ]+)`),
	}
)

// minDocumentNumberDigits is the shortest digit run accepted as a document
// number after separators are stripped. Shorter runs are treated as noise
// and the next pattern in the cascade is tried.
const minDocumentNumberDigits = 6

// ParseDocument extracts identity-document fields from recognized text.
// Fields without a match stay unset; FullName is derived when both name
// parts are present.
func ParseDocument(text string) DocumentRecord {
	var rec DocumentRecord

	for _, re := range documentNumberPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		digits := DigitsOnly(m[1])
		if len(digits) >= minDocumentNumberDigits {
			rec.DocumentNumber = strPtr(digits)
			break
		}
	}

	if v, ok := firstNamePatterns.FirstMatch(text); ok {
		rec.FirstName = strPtr(NormalizeName(v))
	}
	if v, ok := lastNamePatterns.FirstMatch(text); ok {
		rec.LastName = strPtr(NormalizeName(v))
	}
	if rec.FirstName != nil && rec.LastName != nil {
		rec.FullName = strPtr(*rec.FirstName + " " + *rec.LastName)
	}

	if v, ok := birthDatePatterns.FirstMatch(text); ok {
		rec.DateOfBirth = strPtr(v)
	}
	if v, ok := expirationDatePatterns.FirstMatch(text); ok {
		rec.ExpirationDate = strPtr(v)
	}
	if v, ok := nationalityPatterns.FirstMatch(text); ok {
		rec.Nationality = strPtr(NormalizeName(v))
	}

	return rec
}
