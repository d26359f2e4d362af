package sheet

import (
	"strings"

	"github.com/rollkeeper/rollkeeper/internal/pdf/forms"
)

// skillNames is the fixed, exhaustive list of the game's standard skills.
// Skills are not aliased: the skill name itself is the field-name convention
// in every known template.
var skillNames = []string{
	"Acrobatics",
	"Animal Handling",
	"Arcana",
	"Athletics",
	"Deception",
	"History",
	"Insight",
	"Intimidation",
	"Investigation",
	"Medicine",
	"Nature",
	"Perception",
	"Performance",
	"Persuasion",
	"Religion",
	"Sleight of Hand",
	"Stealth",
	"Survival",
}

// extractSkills looks up each standard skill by its literal name.
func (e *Extractor) extractSkills(raw forms.RawFieldMap, rec *Record) {
	skills := make(map[string]string)
	for _, name := range skillNames {
		if v, ok := ResolveExact(raw, []string{name}); ok && strings.TrimSpace(v) != "" {
			skills[name] = v
		}
	}
	if len(skills) > 0 {
		rec.Skills = skills
	}
}
