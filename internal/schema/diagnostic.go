package schema

import "fmt"

// Severity of a diagnostic.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

func (s Severity) rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityError:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// Blocking reports whether s prevents the rune from rendering.
func (s Severity) Blocking() bool { return s.rank() >= SeverityError.rank() }

// Diagnostic identifiers.
const (
	DiagMissingRequired = "attribute-missing-required"
	DiagInvalidType     = "attribute-type-invalid"
	DiagInvalidValue    = "attribute-value-invalid"
	DiagUndefinedAttr   = "attribute-undefined"
	DiagUndefinedTag    = "tag-undefined"
	DiagUnknownRegion   = "region-unknown"
	DiagInvalidNav      = "nav-invalid"
	DiagDuplicateID     = "id-duplicate"
)

// Diagnostic is an AttributeValidationError: it is recovered locally and
// rendered inline instead of failing the document.
type Diagnostic struct {
	ID        string   `json:"id"`
	Level     Severity `json:"level"`
	Message   string   `json:"message"`
	Tag       string   `json:"tag,omitempty"`
	Attribute string   `json:"attribute,omitempty"`
}

func (d Diagnostic) Error() string {
	if d.Attribute != "" {
		return fmt.Sprintf("%s[%s] %s: %s", d.Tag, d.Attribute, d.Level, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Tag, d.Level, d.Message)
}

// Worst returns the most severe diagnostic, or false for an empty list.
func Worst(diags []Diagnostic) (Diagnostic, bool) {
	if len(diags) == 0 {
		return Diagnostic{}, false
	}
	worst := diags[0]
	for _, d := range diags[1:] {
		if d.Level.rank() > worst.Level.rank() {
			worst = d
		}
	}
	return worst, true
}

// Blocking reports whether any diagnostic prevents rendering.
func Blocking(diags []Diagnostic) bool {
	w, ok := Worst(diags)
	return ok && w.Level.Blocking()
}
