package sheet

import (
	"strings"

	"github.com/rollkeeper/rollkeeper/internal/pdf/forms"
)

// abilityNames in conventional sheet order.
var abilityNames = []string{"strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma"}

var abilityAbbrev = map[string]string{
	"strength":     "STR",
	"dexterity":    "DEX",
	"constitution": "CON",
	"intelligence": "INT",
	"wisdom":       "WIS",
	"charisma":     "CHA",
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// extractAbilityScores populates the ability sub-mapping. Per ability the
// candidates are the three-letter abbreviation, the full name, and the
// lower-case full name. The sub-mapping exists only when at least one score
// was found.
func (e *Extractor) extractAbilityScores(raw forms.RawFieldMap, rec *Record) {
	scores := make(map[string]string)
	for _, ability := range abilityNames {
		candidates := []string{abilityAbbrev[ability], titleCase(ability), ability}
		if v, ok := Resolve(raw, candidates); ok && strings.TrimSpace(v) != "" {
			scores[ability] = v
		}
	}
	if len(scores) > 0 {
		rec.AbilityScores = scores
	}
}

// extractSavingThrows populates the saving-throw sub-mapping, same approach
// as ability scores with the save-specific spellings.
func (e *Extractor) extractSavingThrows(raw forms.RawFieldMap, rec *Record) {
	saves := make(map[string]string)
	for _, ability := range abilityNames {
		name := titleCase(ability)
		candidates := []string{"ST " + name, name + "Save", name + " Save"}
		if v, ok := Resolve(raw, candidates); ok && strings.TrimSpace(v) != "" {
			saves[ability] = v
		}
	}
	if len(saves) > 0 {
		rec.SavingThrows = saves
	}
}
