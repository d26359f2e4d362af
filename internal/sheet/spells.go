package sheet

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rollkeeper/rollkeeper/internal/pdf/forms"
)

var (
	spellNameRe   = regexp.MustCompile(`(?i)^spell[ _-]?name[ _-]?(\d+)$`)
	cantripNameRe = regexp.MustCompile(`(?i)^cantrip[ _-]?(\d+)$`)
)

// extractSpells harvests spells and cantrips from numbered field names,
// ordered by their numeric suffix and deduplicated. It also derives the
// spellcasting ability from the class/level string resolved by the combat
// section; unlisted classes get no value at all.
func (e *Extractor) extractSpells(raw forms.RawFieldMap, rec *Record) {
	if list := numberedValues(raw, spellNameRe); len(list) > 0 {
		rec.Spells = list
	}
	if list := numberedValues(raw, cantripNameRe); len(list) > 0 {
		rec.Cantrips = list
	}

	if ability, ok := SpellcastingAbility(rec.ClassLevel); ok {
		rec.SpellcastingAbility = ability
	}
}

// numberedValues collects non-empty values of fields matching a numbered
// name pattern, sorted by the captured index.
func numberedValues(raw forms.RawFieldMap, re *regexp.Regexp) []string {
	type entry struct {
		index int
		value string
	}
	// Keys scan in sorted order so duplicate indexes resolve identically on
	// every extraction.
	var entries []entry
	for _, key := range sortedKeys(raw) {
		m := re.FindStringSubmatch(strings.TrimSpace(key))
		if m == nil {
			continue
		}
		v := stringify(raw[key])
		if strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		entries = append(entries, entry{index: n, value: v})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

	values := make([]string, 0, len(entries))
	for _, en := range entries {
		values = append(values, en.value)
	}
	return dedupe(values)
}
