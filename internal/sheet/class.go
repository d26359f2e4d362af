package sheet

import (
	"regexp"
	"strings"
)

// classLevelRe matches the "Name N" shape of a class/level string:
// alphabetic word(s) followed by a trailing number, e.g. "Barbarian 3" or
// "Circle of the Moon Druid 5".
var classLevelRe = regexp.MustCompile(`^([A-Za-z][A-Za-z' ]*?)\s+(\d+)`)

// ExtractClassName pulls the leading class-name token from a class/level
// string. Returns "" when the string does not match the expected shape.
func ExtractClassName(classLevel string) string {
	m := classLevelRe.FindStringSubmatch(strings.TrimSpace(classLevel))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// spellcastingAbilities is the closed derivation table. Classes not listed,
// including every non-caster, yield no value: absence signals "does not cast
// from the standard tables", never a sentinel.
var spellcastingAbilities = map[string]Ability{
	"bard":      AbilityCHA,
	"cleric":    AbilityWIS,
	"druid":     AbilityWIS,
	"paladin":   AbilityCHA,
	"ranger":    AbilityWIS,
	"sorcerer":  AbilityCHA,
	"warlock":   AbilityCHA,
	"wizard":    AbilityINT,
	"artificer": AbilityINT,
	"monk":      AbilityWIS,
}

// SpellcastingAbility derives the casting ability from a class/level string.
func SpellcastingAbility(classLevel string) (Ability, bool) {
	name := ExtractClassName(classLevel)
	if name == "" {
		return "", false
	}
	ability, ok := spellcastingAbilities[strings.ToLower(name)]
	return ability, ok
}
