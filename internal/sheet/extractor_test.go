package sheet

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollkeeper/rollkeeper/internal/pdf/forms"
)

func testExtractor() *Extractor {
	return NewExtractor(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExtract_EmptyMapYieldsEmptyRecord(t *testing.T) {
	rec := testExtractor().Extract(forms.RawFieldMap{})
	assert.Equal(t, &Record{}, rec)
}

func TestExtract_Identity(t *testing.T) {
	raw := forms.RawFieldMap{
		"CharacterName": "Mira",
		"PlayerName":    "Sam",
		"Race":          "Half-Orc",
		"Background":    "Outlander",
		"Alignment":     "Chaotic Good",
	}
	rec := testExtractor().Extract(raw)

	assert.Equal(t, "Mira", rec.CharacterName)
	assert.Equal(t, "Sam", rec.PlayerName)
	assert.Equal(t, "Half-Orc", rec.Race)
	assert.Equal(t, "Outlander", rec.Background)
	assert.Equal(t, "Chaotic Good", rec.Alignment)
}

func TestExtract_CurrentHPBackfilledFromMax(t *testing.T) {
	rec := testExtractor().Extract(forms.RawFieldMap{"HPMax": "35"})
	assert.Equal(t, "35", rec.MaxHP)
	assert.Equal(t, "35", rec.CurrentHP)
}

func TestExtract_CurrentHPNotOverwritten(t *testing.T) {
	rec := testExtractor().Extract(forms.RawFieldMap{
		"HPMax":     "35",
		"HPCurrent": "12",
	})
	assert.Equal(t, "12", rec.CurrentHP)
}

func TestExtract_CombatValuesStayRawStrings(t *testing.T) {
	rec := testExtractor().Extract(forms.RawFieldMap{
		"AC":    "13 (16 with shield)",
		"Speed": "30 ft.",
	})
	assert.Equal(t, "13 (16 with shield)", rec.AC)
	assert.Equal(t, "30 ft.", rec.Speed)
}

func TestExtract_AbilityScores(t *testing.T) {
	raw := forms.RawFieldMap{
		"STR":          "16",
		"Dexterity":    "14",
		"constitution": "15",
		"INT":          "8",
		"WIS":          "12",
		"CHA":          "10",
	}
	rec := testExtractor().Extract(raw)

	require.NotNil(t, rec.AbilityScores)
	assert.Equal(t, map[string]string{
		"strength":     "16",
		"dexterity":    "14",
		"constitution": "15",
		"intelligence": "8",
		"wisdom":       "12",
		"charisma":     "10",
	}, rec.AbilityScores)
}

func TestExtract_AbilityScoresAbsentWhenNoneFound(t *testing.T) {
	rec := testExtractor().Extract(forms.RawFieldMap{"Unrelated": "1"})
	assert.Nil(t, rec.AbilityScores)
}

func TestExtract_SavingThrows(t *testing.T) {
	raw := forms.RawFieldMap{
		"ST Strength":   "+5",
		"WisdomSave":    "+1",
		"Charisma Save": "-1",
	}
	rec := testExtractor().Extract(raw)

	assert.Equal(t, map[string]string{
		"strength": "+5",
		"wisdom":   "+1",
		"charisma": "-1",
	}, rec.SavingThrows)
}

func TestExtract_Skills(t *testing.T) {
	raw := forms.RawFieldMap{
		"Athletics":       "+5",
		"Sleight of Hand": "+2",
		"Stealth":         "",
	}
	rec := testExtractor().Extract(raw)

	assert.Equal(t, map[string]string{
		"Athletics":       "+5",
		"Sleight of Hand": "+2",
	}, rec.Skills)
}

func TestExtract_DefensesWithResistances(t *testing.T) {
	raw := forms.RawFieldMap{
		"Defenses": "Resistances: fire, poison\nShield of Faith",
	}
	rec := testExtractor().Extract(raw)

	assert.Equal(t, "Resistances: fire, poison\nShield of Faith", rec.Defenses)
	assert.Equal(t, []string{"fire", "poison"}, rec.DamageResistances)
	assert.Nil(t, rec.DamageImmunities)
	assert.Nil(t, rec.DamageVulnerabilities)
}

func TestExtract_DefensesWithoutResistanceLabel(t *testing.T) {
	rec := testExtractor().Extract(forms.RawFieldMap{"Defenses": "Stoneskin"})
	assert.Equal(t, "Stoneskin", rec.Defenses)
	assert.Nil(t, rec.DamageResistances)
}

func TestExtract_SensesSharedFieldGuard(t *testing.T) {
	rec := testExtractor().Extract(forms.RawFieldMap{
		"AdditionalSenses": "Darkvision 60 ft.",
	})

	// All four senses resolve to the same shared field; only the one the
	// text actually names may be recorded.
	assert.Equal(t, map[string]string{"darkvision": "Darkvision 60 ft."}, rec.Senses)
}

func TestExtract_SensesMultiple(t *testing.T) {
	rec := testExtractor().Extract(forms.RawFieldMap{
		"Senses": "Darkvision 120 ft., Truesight 10 ft.",
	})

	assert.Equal(t, map[string]string{
		"darkvision": "Darkvision 120 ft., Truesight 10 ft.",
		"truesight":  "Darkvision 120 ft., Truesight 10 ft.",
	}, rec.Senses)
}

func TestExtract_ProficienciesAndLanguages(t *testing.T) {
	raw := forms.RawFieldMap{
		"ProficienciesLang": "LANGUAGES: Common, Orc\n\nWEAPONS: Simple, Martial, Simple\nARMOR: Light, Medium",
	}
	rec := testExtractor().Extract(raw)

	assert.Equal(t, []string{"Common", "Orc"}, rec.Languages)
	assert.Equal(t, []string{"Simple", "Martial"}, rec.WeaponProficiencies)
	assert.Equal(t, []string{"Light", "Medium"}, rec.ArmorProficiencies)
}

func TestExtract_ProficiencyEntryWrappedAcrossLines(t *testing.T) {
	raw := forms.RawFieldMap{
		"ProficienciesLang": "LANGUAGES: Common, Thieves'\nCant\n\nWEAPONS: Simple",
	}
	rec := testExtractor().Extract(raw)

	// The wrapped entry stays a single entry; only commas separate items.
	assert.Equal(t, []string{"Common", "Thieves' Cant"}, rec.Languages)
	assert.Equal(t, []string{"Simple"}, rec.WeaponProficiencies)
}

func TestExtract_Features(t *testing.T) {
	raw := forms.RawFieldMap{
		"Features and Traits": "Rage, Unarmored Defense",
		"RacialTraits":        "Relentless Endurance",
	}
	rec := testExtractor().Extract(raw)

	assert.Equal(t, []string{"Rage, Unarmored Defense"}, rec.ClassFeatures)
	assert.Equal(t, []string{"Relentless Endurance"}, rec.RacialTraits)
}

func TestExtract_EquipmentFromWeaponNameFields(t *testing.T) {
	raw := forms.RawFieldMap{
		"Wpn Name 1":  "Handaxe",
		"Wpn Name 2":  "Javelin",
		"Wpn Name 3":  "Handaxe",
		"Wpn1 Damage": "1d6",
	}
	rec := testExtractor().Extract(raw)

	assert.Equal(t, []string{"Handaxe", "Javelin"}, rec.Equipment)
}

func TestExtract_EquipmentOrderedByNumericSuffix(t *testing.T) {
	raw := forms.RawFieldMap{
		"Wpn Name 10": "Longbow",
		"Wpn Name 2":  "Javelin",
		"Wpn Name 1":  "Handaxe",
		"Wpn Name":    "Dagger",
	}
	rec := testExtractor().Extract(raw)

	assert.Equal(t, []string{"Handaxe", "Javelin", "Longbow", "Dagger"}, rec.Equipment)
}

func TestExtract_SpellsOrderedByNumericSuffix(t *testing.T) {
	raw := forms.RawFieldMap{
		"ClassLevel":  "Wizard 5",
		"SpellName10": "Fireball",
		"SpellName2":  "Misty Step",
		"SpellName1":  "Shield",
		"SpellName3":  "",
		"Cantrip 1":   "Fire Bolt",
		"Cantrip 2":   "Mage Hand",
	}
	rec := testExtractor().Extract(raw)

	assert.Equal(t, []string{"Shield", "Misty Step", "Fireball"}, rec.Spells)
	assert.Equal(t, []string{"Fire Bolt", "Mage Hand"}, rec.Cantrips)
	assert.Equal(t, AbilityINT, rec.SpellcastingAbility)
}

func TestExtract_SpellcastingAbilityAbsentForNonCasters(t *testing.T) {
	rec := testExtractor().Extract(forms.RawFieldMap{"ClassLevel": "Barbarian 3"})
	assert.Empty(t, rec.SpellcastingAbility)
}

func TestExtract_PersonalityStrictResolution(t *testing.T) {
	raw := forms.RawFieldMap{
		"PersonalityTraits": "Blunt",
		"Ideals":            "Freedom",
		"Bonds":             "My clan",
		"Flaws":             "Stubborn",
		"DM Notes Extra":    "must not bleed into notes",
	}
	rec := testExtractor().Extract(raw)

	assert.Equal(t, "Blunt", rec.PersonalityTraits)
	assert.Equal(t, "Freedom", rec.Ideals)
	assert.Equal(t, "My clan", rec.Bonds)
	assert.Equal(t, "Stubborn", rec.Flaws)
	assert.Empty(t, rec.AdditionalNotesField)
}

func TestExtract_NotesCombined(t *testing.T) {
	rec := testExtractor().Extract(forms.RawFieldMap{
		"AdditionalNotes1": "First block",
		"AdditionalNotes2": "Second block",
	})
	assert.Equal(t, "First block\n\nSecond block", rec.AdditionalNotesField)
}

func TestExtract_NotesFallbackWhenNumberedBlocksAbsent(t *testing.T) {
	rec := testExtractor().Extract(forms.RawFieldMap{"Notes": "only block"})
	assert.Equal(t, "only block", rec.AdditionalNotesField)
}

func TestExtract_WhitespaceOnlyValuesTreatedAsAbsent(t *testing.T) {
	rec := testExtractor().Extract(forms.RawFieldMap{
		"CharacterName": "   ",
		"HPMax":         "35",
	})
	assert.Empty(t, rec.CharacterName)
	assert.Equal(t, "35", rec.MaxHP)
}

func TestExtract_Deterministic(t *testing.T) {
	// No "AC" field: the ac candidates resolve loosely and tie between
	// "Race" and "Background", so this map only extracts identically when
	// tie-breaking is deterministic.
	raw := forms.RawFieldMap{
		"CharacterName": "Mira",
		"ClassLevel":    "Barbarian 3",
		"Race":          "Half-Orc",
		"Background":    "Outlander",
		"HPMax":         "35",
		"Wpn Name 1":    "Handaxe",
	}
	first := testExtractor().Extract(raw)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, testExtractor().Extract(raw))
	}
}
