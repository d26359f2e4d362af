package sheet

import (
	"log/slog"
	"strings"

	"github.com/rollkeeper/rollkeeper/internal/pdf/forms"
)

// Extractor turns a raw field map into a canonical Record by running the
// section extractors. Sections are independent; the one ordering constraint
// is that combat runs before spells, because the spellcasting ability derives
// from the resolved class/level string.
type Extractor struct {
	aliases *AliasTable
	logger  *slog.Logger
}

// NewExtractor creates an extractor. A nil alias table uses the built-in
// one; a nil logger discards section diagnostics.
func NewExtractor(aliases *AliasTable, logger *slog.Logger) *Extractor {
	if aliases == nil {
		aliases = DefaultAliasTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{aliases: aliases, logger: logger}
}

// Extract runs every section over the raw map and assembles the record.
// Sections never fail the extraction: a panicking section contributes
// nothing and the rest of the record survives, matching the pipeline's
// lossy-tolerant contract. A totally empty or garbled map yields an empty
// record, not an error.
func (e *Extractor) Extract(raw forms.RawFieldMap) *Record {
	rec := &Record{}

	sections := []struct {
		name string
		fn   func(forms.RawFieldMap, *Record)
	}{
		{"identity", e.extractIdentity},
		{"combat", e.extractCombat},
		{"abilities", e.extractAbilityScores},
		{"saves", e.extractSavingThrows},
		{"skills", e.extractSkills},
		{"defenses", e.extractDefenses},
		{"senses", e.extractSenses},
		{"proficiencies", e.extractProficiencies},
		{"features", e.extractFeatures},
		{"equipment", e.extractEquipment},
		{"spells", e.extractSpells},
		{"personality", e.extractPersonality},
	}
	for _, s := range sections {
		e.runSection(s.name, s.fn, raw, rec)
	}

	// The one cross-field inference performed centrally: a sheet that lists
	// only a maximum is assumed to be at full health.
	if rec.CurrentHP == "" && rec.MaxHP != "" {
		rec.CurrentHP = rec.MaxHP
	}

	return rec
}

func (e *Extractor) runSection(name string, fn func(forms.RawFieldMap, *Record), raw forms.RawFieldMap, rec *Record) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("sheet section extraction panicked", "section", name, "panic", r)
		}
	}()
	fn(raw, rec)
}

// lookup resolves a canonical field through the alias table, treating
// whitespace-only values as absent.
func (e *Extractor) lookup(raw forms.RawFieldMap, field string) string {
	v, ok := Resolve(raw, e.aliases.Candidates(field))
	if !ok || strings.TrimSpace(v) == "" {
		return ""
	}
	return v
}

// lookupExact is lookup with strict resolution only.
func (e *Extractor) lookupExact(raw forms.RawFieldMap, field string) string {
	v, ok := ResolveExact(raw, e.aliases.Candidates(field))
	if !ok || strings.TrimSpace(v) == "" {
		return ""
	}
	return v
}
