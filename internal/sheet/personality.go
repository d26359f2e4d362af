package sheet

import (
	"strings"

	"github.com/rollkeeper/rollkeeper/internal/pdf/forms"
)

// extractPersonality fills the personality/background block. These fields
// resolve with ResolveExact only: loose matching here caused field bleed
// ("Notes" matching unrelated widgets), so the strict variant is a
// load-bearing choice, not an omission.
func (e *Extractor) extractPersonality(raw forms.RawFieldMap, rec *Record) {
	rec.PersonalityTraits = e.lookupExact(raw, fieldPersonality)
	rec.Ideals = e.lookupExact(raw, fieldIdeals)
	rec.Bonds = e.lookupExact(raw, fieldBonds)
	rec.Flaws = e.lookupExact(raw, fieldFlaws)
	rec.Backstory = e.lookupExact(raw, fieldBackstory)
	rec.Features = e.lookupExact(raw, fieldFeatures)
	rec.AdditionalFeatures = e.lookupExact(raw, fieldAdditionalFeats)
	rec.AlliesOrganizations = e.lookupExact(raw, fieldAllies)
	rec.AdditionalNotesField = e.combineNotes(raw)
}

// combineNotes joins the two specifically-named note blocks with a blank
// line. Only when neither block is present does it fall back to the aliased
// note field names.
func (e *Extractor) combineNotes(raw forms.RawFieldMap) string {
	first, _ := ResolveExact(raw, []string{noteFieldFirst})
	second, _ := ResolveExact(raw, []string{noteFieldSecond})

	var parts []string
	if strings.TrimSpace(first) != "" {
		parts = append(parts, first)
	}
	if strings.TrimSpace(second) != "" {
		parts = append(parts, second)
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n\n")
	}

	return e.lookupExact(raw, fieldAdditionalNotes)
}
