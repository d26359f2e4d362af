package sheet

import (
	"strings"

	"github.com/rollkeeper/rollkeeper/internal/pdf/forms"
)

// senseNames are the senses the templates describe in free text.
var senseNames = []string{"darkvision", "truesight", "blindsight", "tremorsense"}

// extractSenses populates the senses sub-mapping. A sense is recorded only
// when the resolved text actually contains that sense's name: several
// templates funnel all senses through one shared "AdditionalSenses" field,
// and without the guard a single "Darkvision 60 ft." entry would be
// mis-attributed to all four senses.
func (e *Extractor) extractSenses(raw forms.RawFieldMap, rec *Record) {
	senses := make(map[string]string)
	for _, sense := range senseNames {
		candidates := []string{titleCase(sense), "AdditionalSenses", "Senses"}
		v, ok := Resolve(raw, candidates)
		if !ok {
			continue
		}
		if !strings.Contains(strings.ToLower(v), sense) {
			continue
		}
		senses[sense] = v
	}
	if len(senses) > 0 {
		rec.Senses = senses
	}
}
