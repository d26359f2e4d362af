package sheet

import (
	"regexp"
	"strings"

	"github.com/rollkeeper/rollkeeper/internal/pdf/forms"
)

// resistancesRe captures the text following a "Resistances" label up to the
// next newline.
var resistancesRe = regexp.MustCompile(`(?i)resistances?\s*:?\s*([^\n]+)`)

// extractDefenses stores the free-text defenses field verbatim and, when the
// text mentions resistances, parses the labeled list out of it.
//
// Damage immunities, vulnerabilities, and condition immunities are declared
// in the record but have no extraction pattern wired: no template observed so
// far labels them in a parseable way, so those lists stay empty rather than
// guessing. TODO: wire immunity/vulnerability labels once a template that
// uses them shows up.
func (e *Extractor) extractDefenses(raw forms.RawFieldMap, rec *Record) {
	text := e.lookup(raw, fieldDefenses)
	if text == "" {
		return
	}
	rec.Defenses = text

	if !strings.Contains(strings.ToLower(text), "resistance") {
		return
	}
	m := resistancesRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	if list := splitList(m[1]); len(list) > 0 {
		rec.DamageResistances = list
	}
}

// splitList splits comma-separated free text into trimmed, non-empty tokens.
func splitList(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		if t := strings.TrimSpace(tok); t != "" {
			out = append(out, t)
		}
	}
	return out
}
