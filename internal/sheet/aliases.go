package sheet

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Alias binds one canonical record attribute to the ordered list of raw
// widget names that refer to it across the known sheet templates. Order
// matters: earlier names are the more trusted spellings.
type Alias struct {
	Field string   `yaml:"field"`
	Names []string `yaml:"names"`
}

// AliasTable holds the canonical-name → candidate-names mapping used by the
// section extractors.
type AliasTable struct {
	defs  []Alias
	index map[string]int
}

// NewAliasTable builds a table from definitions. Duplicate field keys merge
// in order.
func NewAliasTable(defs []Alias) *AliasTable {
	t := &AliasTable{index: make(map[string]int)}
	for _, def := range defs {
		t.add(def)
	}
	return t
}

func (t *AliasTable) add(def Alias) {
	if i, ok := t.index[def.Field]; ok {
		t.defs[i].Names = append(t.defs[i].Names, def.Names...)
		return
	}
	t.index[def.Field] = len(t.defs)
	t.defs = append(t.defs, Alias{Field: def.Field, Names: append([]string(nil), def.Names...)})
}

// Candidates returns the ordered raw-name list for a canonical field, or nil
// when the field is unknown.
func (t *AliasTable) Candidates(field string) []string {
	if i, ok := t.index[field]; ok {
		return t.defs[i].Names
	}
	return nil
}

// overlayFile is the YAML shape of an alias overlay.
type overlayFile struct {
	Aliases []Alias `yaml:"aliases"`
}

// MergeOverlay appends aliases from YAML bytes, so new sheet templates can be
// supported through configuration. Overlay names are tried after the
// built-in ones.
func (t *AliasTable) MergeOverlay(data []byte) error {
	var overlay overlayFile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse alias overlay: %w", err)
	}
	for _, def := range overlay.Aliases {
		if def.Field == "" || len(def.Names) == 0 {
			continue
		}
		t.add(def)
	}
	return nil
}

// MergeOverlayFile reads and merges an overlay from disk.
func (t *AliasTable) MergeOverlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read alias overlay: %w", err)
	}
	return t.MergeOverlay(data)
}

// Canonical field keys.
const (
	fieldCharacterName     = "characterName"
	fieldPlayerName        = "playerName"
	fieldRace              = "race"
	fieldBackground        = "background"
	fieldAlignment         = "alignment"
	fieldClassLevel        = "classLevel"
	fieldMaxHP             = "maxHP"
	fieldCurrentHP         = "currentHP"
	fieldTemporaryHP       = "temporaryHP"
	fieldAC                = "ac"
	fieldInitiative        = "initiative"
	fieldSpeed             = "speed"
	fieldProficiencyBonus  = "proficiencyBonus"
	fieldExperiencePoints  = "experiencePoints"
	fieldHitDice           = "hitDice"
	fieldPassivePerception = "passivePerception"
	fieldArmorDescription  = "armorDescription"
	fieldDefenses          = "defenses"
	fieldProficienciesLang = "proficienciesAndLanguages"
	fieldClassFeatures     = "classFeatures"
	fieldRacialTraits      = "racialTraits"
	fieldPersonality       = "personalityTraits"
	fieldIdeals            = "ideals"
	fieldBonds             = "bonds"
	fieldFlaws             = "flaws"
	fieldBackstory         = "backstory"
	fieldAdditionalNotes   = "additionalNotesField"
	fieldFeatures          = "features"
	fieldAdditionalFeats   = "additionalFeatures"
	fieldAllies            = "alliesOrganizations"
)

// The two note blocks combined into additionalNotesField. These are matched
// exactly before any alias fallback.
const (
	noteFieldFirst  = "AdditionalNotes1"
	noteFieldSecond = "AdditionalNotes2"
)

// DefaultAliasTable covers the community sheet templates observed in the
// wild. The table is plain data so it can be tested and extended on its own.
func DefaultAliasTable() *AliasTable {
	return NewAliasTable([]Alias{
		{Field: fieldCharacterName, Names: []string{"CharacterName", "Character Name", "CharName", "Name"}},
		{Field: fieldPlayerName, Names: []string{"PlayerName", "Player Name", "Player"}},
		{Field: fieldRace, Names: []string{"Race", "Race "}},
		{Field: fieldBackground, Names: []string{"Background"}},
		{Field: fieldAlignment, Names: []string{"Alignment"}},
		{Field: fieldClassLevel, Names: []string{"ClassLevel", "Class & Level", "ClassAndLevel", "Class Level"}},
		{Field: fieldMaxHP, Names: []string{"HPMax", "MaxHP", "HP Max", "HitPointMaximum", "Hit Point Maximum"}},
		{Field: fieldCurrentHP, Names: []string{"HPCurrent", "CurrentHP", "HP Current", "CURRENT HIT POINTS", "HitPoints"}},
		{Field: fieldTemporaryHP, Names: []string{"HPTemp", "TempHP", "HP Temp", "TEMPORARY HIT POINTS"}},
		{Field: fieldAC, Names: []string{"AC", "ArmorClass", "Armor Class"}},
		{Field: fieldInitiative, Names: []string{"Initiative", "Init"}},
		{Field: fieldSpeed, Names: []string{"Speed"}},
		{Field: fieldProficiencyBonus, Names: []string{"ProfBonus", "ProficiencyBonus", "Proficiency Bonus"}},
		{Field: fieldExperiencePoints, Names: []string{"XP", "EXP", "ExperiencePoints", "Experience Points"}},
		{Field: fieldHitDice, Names: []string{"HDTotal", "HitDice", "Hit Dice", "HD"}},
		{Field: fieldPassivePerception, Names: []string{"Passive", "PassivePerception", "Passive Wisdom (Perception)"}},
		{Field: fieldArmorDescription, Names: []string{"ArmorDescription", "Equipped Armor", "Armor"}},
		{Field: fieldDefenses, Names: []string{"Defenses", "Defenses/Resistances", "DefensesResistances"}},
		{Field: fieldProficienciesLang, Names: []string{"ProficienciesLang", "Proficiencies and Languages", "OtherProfs", "ProfLang"}},
		{Field: fieldClassFeatures, Names: []string{"Features and Traits", "FeaturesTraits", "Feat+Traits"}},
		{Field: fieldRacialTraits, Names: []string{"RacialTraits", "Racial Traits", "Race Features"}},

		// Personality fields resolve with ResolveExact only; keep these
		// spellings precise.
		{Field: fieldPersonality, Names: []string{"PersonalityTraits", "Personality Traits", "Personality"}},
		{Field: fieldIdeals, Names: []string{"Ideals"}},
		{Field: fieldBonds, Names: []string{"Bonds"}},
		{Field: fieldFlaws, Names: []string{"Flaws"}},
		{Field: fieldBackstory, Names: []string{"Backstory", "CharacterBackstory", "Character Backstory"}},
		{Field: fieldAdditionalNotes, Names: []string{"AdditionalNotes", "Additional Notes", "Notes"}},
		{Field: fieldFeatures, Names: []string{"Features"}},
		{Field: fieldAdditionalFeats, Names: []string{"AdditionalFeatures", "Additional Features & Traits", "AdditFeaturesAndTraits"}},
		{Field: fieldAllies, Names: []string{"Allies", "AlliesOrganizations", "Allies & Organizations"}},
	})
}
