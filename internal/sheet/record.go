// Package sheet normalizes raw character-sheet form fields into a canonical
// character record.
//
// Community sheet templates disagree on field naming, so every attribute is
// resolved through an alias table and every attribute is optional: a present
// key means a non-empty value was actually found on the sheet, never a
// placeholder. Numeric-looking stats (HP, AC, bonuses) stay raw strings on
// purpose; sheets legitimately contain values like "13 (16 with shield)" and
// coercion is a display concern.
package sheet

// Ability identifies a spellcasting ability.
type Ability string

const (
	AbilityINT Ability = "INT"
	AbilityWIS Ability = "WIS"
	AbilityCHA Ability = "CHA"
)

// Record is the canonical character record extracted from one sheet upload.
type Record struct {
	// Identity
	CharacterName string `json:"characterName,omitempty"`
	PlayerName    string `json:"playerName,omitempty"`
	Race          string `json:"race,omitempty"`
	Background    string `json:"background,omitempty"`
	Alignment     string `json:"alignment,omitempty"`

	// Combat
	ClassLevel        string `json:"classLevel,omitempty"`
	MaxHP             string `json:"maxHP,omitempty"`
	CurrentHP         string `json:"currentHP,omitempty"`
	TemporaryHP       string `json:"temporaryHP,omitempty"`
	AC                string `json:"ac,omitempty"`
	Initiative        string `json:"initiative,omitempty"`
	Speed             string `json:"speed,omitempty"`
	ProficiencyBonus  string `json:"proficiencyBonus,omitempty"`
	ExperiencePoints  string `json:"experiencePoints,omitempty"`
	HitDice           string `json:"hitDice,omitempty"`
	PassivePerception string `json:"passivePerception,omitempty"`
	ArmorDescription  string `json:"armorDescription,omitempty"`

	AbilityScores map[string]string `json:"abilityScores,omitempty"`
	SavingThrows  map[string]string `json:"savingThrows,omitempty"`
	Skills        map[string]string `json:"skills,omitempty"`

	// Defenses. Immunities and vulnerabilities are schema-declared but have
	// no extraction pattern wired yet; only resistances are parsed out of the
	// free-text defenses field.
	Defenses              string   `json:"defenses,omitempty"`
	DamageResistances     []string `json:"damageResistances,omitempty"`
	DamageImmunities      []string `json:"damageImmunities,omitempty"`
	DamageVulnerabilities []string `json:"damageVulnerabilities,omitempty"`
	ConditionImmunities   []string `json:"conditionImmunities,omitempty"`

	Senses map[string]string `json:"senses,omitempty"`

	Languages           []string `json:"languages,omitempty"`
	Equipment           []string `json:"equipment,omitempty"`
	ClassFeatures       []string `json:"classFeatures,omitempty"`
	RacialTraits        []string `json:"racialTraits,omitempty"`
	Spells              []string `json:"spells,omitempty"`
	Cantrips            []string `json:"cantrips,omitempty"`
	WeaponProficiencies []string `json:"weaponProficiencies,omitempty"`
	ArmorProficiencies  []string `json:"armorProficiencies,omitempty"`

	SpellcastingAbility Ability `json:"spellcastingAbility,omitempty"`

	// Personality and background
	PersonalityTraits    string `json:"personalityTraits,omitempty"`
	Ideals               string `json:"ideals,omitempty"`
	Bonds                string `json:"bonds,omitempty"`
	Flaws                string `json:"flaws,omitempty"`
	Backstory            string `json:"backstory,omitempty"`
	AdditionalNotesField string `json:"additionalNotesField,omitempty"`
	Features             string `json:"features,omitempty"`
	AdditionalFeatures   string `json:"additionalFeatures,omitempty"`
	AlliesOrganizations  string `json:"alliesOrganizations,omitempty"`
}

// Identity is the derived triple used to backfill character metadata
// alongside the stored record.
type Identity struct {
	Race       string `json:"race,omitempty"`
	Background string `json:"background,omitempty"`
	Class      string `json:"class,omitempty"`
}

// Identity derives the metadata triple from the record.
func (r *Record) IdentityTriple() Identity {
	return Identity{
		Race:       r.Race,
		Background: r.Background,
		Class:      ExtractClassName(r.ClassLevel),
	}
}
