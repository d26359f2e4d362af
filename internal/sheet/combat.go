package sheet

import "github.com/rollkeeper/rollkeeper/internal/pdf/forms"

// extractCombat fills the combat stats. Values stay raw strings; sheets hold
// things like "13 (16 with shield)" and coercing here would reject them.
// The currentHP-from-maxHP backfill happens centrally in Extract, not here.
func (e *Extractor) extractCombat(raw forms.RawFieldMap, rec *Record) {
	rec.ClassLevel = e.lookup(raw, fieldClassLevel)
	rec.MaxHP = e.lookup(raw, fieldMaxHP)
	rec.CurrentHP = e.lookup(raw, fieldCurrentHP)
	rec.TemporaryHP = e.lookup(raw, fieldTemporaryHP)
	rec.AC = e.lookup(raw, fieldAC)
	rec.Initiative = e.lookup(raw, fieldInitiative)
	rec.Speed = e.lookup(raw, fieldSpeed)
	rec.ProficiencyBonus = e.lookup(raw, fieldProficiencyBonus)
	rec.ExperiencePoints = e.lookup(raw, fieldExperiencePoints)
	rec.HitDice = e.lookup(raw, fieldHitDice)
	rec.PassivePerception = e.lookup(raw, fieldPassivePerception)
	rec.ArmorDescription = e.lookup(raw, fieldArmorDescription)
}
