package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

// Pattern rules for certificate field extraction. Each rule matches
// case-insensitively and only the first occurrence in the text counts.
var (
	reSerialNumber = regexp.MustCompile(`(?i)serial number:\s*([A-Za-z0-9\-]+)`)
	reProjectID    = regexp.MustCompile(`(?i)project\s+id:\s*([A-Za-z0-9\-]+)`)
	reProjectName  = regexp.MustCompile(`(?i)project\s+name:\s*(.+)`)
	reVintage      = regexp.MustCompile(`(?i)vintage:\s*(\d{4})`)
	reAmount       = regexp.MustCompile(`(?i)amount.*?:\s*([\d,\.]+)`)
	reIssuanceDate = regexp.MustCompile(`(?i)issuance date:\s*(\d{2}/\d{2}/\d{4}|\d{4}-\d{2}-\d{2})`)
	reRegistry     = regexp.MustCompile(`(?i)registry:\s*([A-Za-z0-9\-]+)`)
	reCategory     = regexp.MustCompile(`(?i)category:\s*([A-Za-z\s\(\)\+\-]+)`)
	reIssuedTo     = regexp.MustCompile(`(?i)issued to:\s*(.+)`)
)

// ParseFields applies the nine pattern rules to extracted text and returns
// the resulting field set. The rules are independent and order-independent;
// matched values are trimmed of surrounding whitespace. A field with no
// match carries the explicit absent value.
func ParseFields(text string) FieldSet {
	return FieldSet{
		SerialNumber: matchField(reSerialNumber, text),
		ProjectID:    matchField(reProjectID, text),
		ProjectName:  matchField(reProjectName, text),
		Vintage:      matchField(reVintage, text),
		Amount:       matchAmount(text),
		IssuanceDate: matchField(reIssuanceDate, text),
		Registry:     matchField(reRegistry, text),
		Category:     matchField(reCategory, text),
		IssuedTo:     matchField(reIssuedTo, text),
	}
}

func matchField(re *regexp.Regexp, text string) FieldValue {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Absent()
	}
	return Raw(strings.TrimSpace(m[1]))
}

// matchAmount strips grouping separators before the numeric parse. When the
// parse fails the trimmed match is kept as a raw string: the field is
// present but unreliable, never silently dropped.
func matchAmount(text string) FieldValue {
	m := reAmount.FindStringSubmatch(text)
	if m == nil {
		return Absent()
	}

	trimmed := strings.TrimSpace(m[1])
	normalized := strings.ReplaceAll(trimmed, ",", "")

	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return Raw(trimmed)
	}
	return Number(value)
}
