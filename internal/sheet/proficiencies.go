package sheet

import (
	"regexp"
	"strings"

	"github.com/rollkeeper/rollkeeper/internal/pdf/forms"
)

// Section headers recognized inside the shared proficiencies/languages
// free-text field.
var profSectionHeaders = []string{"LANGUAGES", "WEAPONS", "ARMOR", "TOOLS"}

var profHeaderRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(profSectionHeaders))
	for _, h := range profSectionHeaders {
		res[h] = regexp.MustCompile(`(?i)\b` + h + `\b\s*:?\s*`)
	}
	return res
}()

var blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)

// extractProficiencies parses languages and weapon/armor proficiencies out of
// the one composite "proficiencies and languages" field. A missing section
// header simply omits that list.
func (e *Extractor) extractProficiencies(raw forms.RawFieldMap, rec *Record) {
	text := e.lookup(raw, fieldProficienciesLang)
	if text == "" {
		return
	}

	if list := sectionList(text, "LANGUAGES"); len(list) > 0 {
		rec.Languages = list
	}
	if list := dedupe(sectionList(text, "WEAPONS")); len(list) > 0 {
		rec.WeaponProficiencies = list
	}
	if list := dedupe(sectionList(text, "ARMOR")); len(list) > 0 {
		rec.ArmorProficiencies = list
	}
}

// sectionList captures the text after a section header up to the next blank
// line or the next section header, split on commas only. An entry wrapped
// across lines stays one entry, with its line break collapsed to a space.
func sectionList(text, header string) []string {
	loc := profHeaderRes[header].FindStringIndex(text)
	if loc == nil {
		return nil
	}
	rest := text[loc[1]:]

	if i := blankLineRe.FindStringIndex(rest); i != nil {
		rest = rest[:i[0]]
	}
	for _, other := range profSectionHeaders {
		if other == header {
			continue
		}
		if i := profHeaderRes[other].FindStringIndex(rest); i != nil {
			rest = rest[:i[0]]
		}
	}

	list := splitList(rest)
	for i, item := range list {
		list[i] = strings.Join(strings.Fields(item), " ")
	}
	return list
}

// extractFeatures takes the class-features and racial-traits fields as the
// literal text of their one known field each, wrapped in a single-element
// list.
func (e *Extractor) extractFeatures(raw forms.RawFieldMap, rec *Record) {
	if v := e.lookup(raw, fieldClassFeatures); v != "" {
		rec.ClassFeatures = []string{v}
	}
	if v := e.lookup(raw, fieldRacialTraits); v != "" {
		rec.RacialTraits = []string{v}
	}
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	var out []string
	for _, item := range list {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
