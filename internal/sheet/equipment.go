package sheet

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rollkeeper/rollkeeper/internal/pdf/forms"
)

var trailingIndexRe = regexp.MustCompile(`(\d+)\s*$`)

// extractEquipment scans the whole raw map for weapon-name fields: any field
// whose name carries both the weapon-table marker token and a "Name" token
// (e.g. "Wpn Name", "Wpn Name 2"). Matching values are collected in field
// order, deduplicated. Fields with a trailing index sort numerically, so
// "Wpn Name 10" follows "Wpn Name 2".
func (e *Extractor) extractEquipment(raw forms.RawFieldMap, rec *Record) {
	var names []string
	for key := range raw {
		k := squash(key)
		if strings.Contains(k, "wpn") && strings.Contains(k, "name") {
			names = append(names, key)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		ni, nj := trailingIndex(names[i]), trailingIndex(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})

	var items []string
	for _, key := range names {
		if v := stringify(raw[key]); strings.TrimSpace(v) != "" {
			items = append(items, v)
		}
	}
	if items = dedupe(items); len(items) > 0 {
		rec.Equipment = items
	}
}

// trailingIndex returns the numeric suffix of a field name, or MaxInt when
// there is none so unindexed fields sort last.
func trailingIndex(name string) int {
	m := trailingIndexRe.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return math.MaxInt
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return math.MaxInt
	}
	return n
}
