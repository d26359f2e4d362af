package sheet

import "github.com/rollkeeper/rollkeeper/internal/pdf/forms"

// extractIdentity fills the identity block. Direct alias lookups, no
// transformation.
func (e *Extractor) extractIdentity(raw forms.RawFieldMap, rec *Record) {
	rec.CharacterName = e.lookup(raw, fieldCharacterName)
	rec.PlayerName = e.lookup(raw, fieldPlayerName)
	rec.Race = e.lookup(raw, fieldRace)
	rec.Background = e.lookup(raw, fieldBackground)
	rec.Alignment = e.lookup(raw, fieldAlignment)
}
