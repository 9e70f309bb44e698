package transform

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/agentic-research/runekit/api"
	"github.com/agentic-research/runekit/internal/schema"
	"golang.org/x/text/runes"
	xtransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Config is what a transform reads besides the node itself.
type Config struct {
	Tags      map[string]*Schema
	Nodes     map[api.NodeKind]*Schema
	Variables *Variables
}

// Variables is per-document mutable state.
type Variables struct {
	// GeneratedIDs holds every anchor id handed out in this document.
	GeneratedIDs map[string]struct{}
	// Path of the document being transformed.
	Path string
	// Extra carries caller-supplied values.
	Extra map[string]any
	// Diagnostics collects every attribute and tag diagnostic.
	Diagnostics []schema.Diagnostic
}

// Report records diagnostics for the document.
func (v *Variables) Report(diags ...schema.Diagnostic) {
	v.Diagnostics = append(v.Diagnostics, diags...)
}

// UniqueID turns text into an anchor id not yet used in the document.
func (v *Variables) UniqueID(text string) string {
	base := Slugify(text)
	if base == "" {
		base = "section"
	}
	id, _ := v.ReserveID(base)
	return id
}

// ReserveID claims id for the document. When id is already taken it is
// suffixed like UniqueID does and ok is false.
func (v *Variables) ReserveID(id string) (reserved string, ok bool) {
	if v.GeneratedIDs == nil {
		v.GeneratedIDs = make(map[string]struct{})
	}
	reserved = id
	for i := 1; ; i++ {
		if _, taken := v.GeneratedIDs[reserved]; !taken {
			break
		}
		reserved = id + "-" + strconv.Itoa(i)
	}
	v.GeneratedIDs[reserved] = struct{}{}
	return reserved, reserved == id
}

// Slugify lowercases text, strips diacritics and joins words with dashes.
func Slugify(text string) string {
	// Chains carry state, so each call builds its own.
	stripMarks := xtransform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := xtransform.String(stripMarks, text)
	if err != nil {
		folded = text
	}
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			dash = false
			sb.WriteRune(r)
		default:
			dash = true
		}
	}
	return sb.String()
}
