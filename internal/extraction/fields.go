package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

type fieldKind int

const (
	kindAbsent fieldKind = iota
	kindNumber
	kindRaw
)

// FieldValue is the value of a single certificate field: a parsed number,
// the raw matched string, or explicitly absent. Absence is distinct from an
// empty string so the validator can tell "never matched" from "matched but
// blank".
type FieldValue struct {
	kind   fieldKind
	number float64
	raw    string
}

// Absent returns the explicit absent value.
func Absent() FieldValue {
	return FieldValue{kind: kindAbsent}
}

// Number returns a numeric field value.
func Number(v float64) FieldValue {
	return FieldValue{kind: kindNumber, number: v}
}

// Raw returns a string field value.
func Raw(s string) FieldValue {
	return FieldValue{kind: kindRaw, raw: s}
}

// Present reports whether the field matched at all.
func (v FieldValue) Present() bool {
	return v.kind != kindAbsent
}

// Blank reports whether the field is absent or holds only whitespace.
// Numeric values are never blank.
func (v FieldValue) Blank() bool {
	switch v.kind {
	case kindNumber:
		return false
	case kindRaw:
		return strings.TrimSpace(v.raw) == ""
	default:
		return true
	}
}

// Number returns the numeric value and whether the field holds one.
func (v FieldValue) Number() (float64, bool) {
	return v.number, v.kind == kindNumber
}

// String returns the raw string value, the formatted number, or "" when absent.
func (v FieldValue) String() string {
	switch v.kind {
	case kindNumber:
		return strconvFloat(v.number)
	case kindRaw:
		return v.raw
	default:
		return ""
	}
}

// MarshalJSON encodes the value as a number, a string, or null when absent.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber:
		return json.Marshal(v.number)
	case kindRaw:
		return json.Marshal(v.raw)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null as absent, numbers as numeric, and strings as raw.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Absent()
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Number(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("field value: %w", err)
	}
	*v = Raw(s)
	return nil
}

func strconvFloat(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", f), "0"), ".")
}

// FieldSet holds the nine certificate fields produced by the parser. Every
// key is always present; unmatched fields carry the explicit absent value.
type FieldSet struct {
	SerialNumber FieldValue `json:"serial_number"`
	ProjectID    FieldValue `json:"project_id"`
	ProjectName  FieldValue `json:"project_name"`
	Vintage      FieldValue `json:"vintage"`
	Amount       FieldValue `json:"amount"`
	IssuanceDate FieldValue `json:"issuance_date"`
	Registry     FieldValue `json:"registry"`
	Category     FieldValue `json:"category"`
	IssuedTo     FieldValue `json:"issued_to"`
}

// requiredFields lists the fields a certificate must carry to authenticate,
// in the order missing names are reported.
var requiredFields = []struct {
	name  string
	value func(FieldSet) FieldValue
}{
	{"serial_number", func(f FieldSet) FieldValue { return f.SerialNumber }},
	{"project_id", func(f FieldSet) FieldValue { return f.ProjectID }},
	{"amount", func(f FieldSet) FieldValue { return f.Amount }},
	{"registry", func(f FieldSet) FieldValue { return f.Registry }},
}

// MissingRequired returns the names of required fields that are absent or
// blank, in the documented reporting order. Non-required fields are never
// checked.
func (f FieldSet) MissingRequired() []string {
	missing := make([]string, 0)
	for _, req := range requiredFields {
		if req.value(f).Blank() {
			missing = append(missing, req.name)
		}
	}
	return missing
}
