// Package forms collects AcroForm widget values from fillable PDFs.
package forms

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/rollkeeper/rollkeeper/internal/pdf/pdferr"
)

// RawFieldMap maps a raw widget name to its extracted value. Values are
// strings for text and choice widgets and bools for checkbox-style widgets.
// Duplicate names across pages resolve to the later page's value.
type RawFieldMap map[string]any

// Collector reads form-widget annotations from PDF documents.
//
// The pdfcpu configuration is built once at construction and never mutated
// afterwards, so a single Collector is safe for concurrent use.
type Collector struct {
	conf *model.Configuration
}

// NewCollector creates a collector with relaxed PDF validation. Community
// sheet templates are frequently produced by tools that bend the spec.
func NewCollector() *Collector {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Collector{conf: conf}
}

// Collect walks every page of the document in order and returns one entry per
// distinct widget name. Later pages overwrite earlier ones on name collision:
// in the known multi-page sheet templates the later page carries the more
// complete data.
//
// Unparseable bytes yield pdferr.ErrMalformedDocument. A document with zero
// pages or zero widgets yields an empty map and no error.
func (c *Collector) Collect(ctx context.Context, pdfBytes []byte) (RawFieldMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pctx, err := api.ReadContext(bytes.NewReader(pdfBytes), c.conf)
	if err != nil {
		return nil, pdferr.WrapOpen(err)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return nil, pdferr.WrapOpen(err)
	}

	fields := make(RawFieldMap)
	for pageNum := 1; pageNum <= pctx.PageCount; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.collectPage(pctx, pageNum, fields)
	}
	return fields, nil
}

// collectPage merges one page's widget values into fields. Per-page failures
// are swallowed: a page without a valid dict or annotations contributes
// nothing.
func (c *Collector) collectPage(pctx *model.Context, pageNum int, fields RawFieldMap) {
	pageDict, _, _, err := pctx.PageDict(pageNum, false)
	if err != nil || pageDict == nil {
		return
	}

	annotsObj, found := pageDict.Find("Annots")
	if !found {
		return
	}
	annots, err := pctx.DereferenceArray(annotsObj)
	if err != nil {
		return
	}

	for _, annotRef := range annots {
		annotDict, err := pctx.DereferenceDict(annotRef)
		if err != nil || annotDict == nil {
			continue
		}
		if !isWidget(pctx, annotDict) {
			continue
		}
		name, ok := fieldName(pctx, annotDict)
		if !ok {
			continue
		}
		value, ok := fieldValue(pctx, annotDict)
		if !ok {
			continue
		}
		fields[name] = value
	}
}

func isWidget(pctx *model.Context, annotDict types.Dict) bool {
	subtypeObj, found := annotDict.Find("Subtype")
	if !found {
		return false
	}
	subtype, err := pctx.DereferenceName(subtypeObj, model.V10, nil)
	if err != nil {
		return false
	}
	return subtype == "Widget"
}

// fieldName resolves the widget's field name, preferring the explicit /T
// entry (walking up /Parent for widgets split from their field dict) and
// falling back to the internal mapping name /TM.
func fieldName(pctx *model.Context, annotDict types.Dict) (string, bool) {
	dict := annotDict
	for i := 0; i < 10 && dict != nil; i++ {
		if nameObj, found := dict.Find("T"); found {
			if name, err := pctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil && name != "" {
				return name, true
			}
		}
		parentObj, found := dict.Find("Parent")
		if !found {
			break
		}
		parent, err := pctx.DereferenceDict(parentObj)
		if err != nil {
			break
		}
		dict = parent
	}

	if tmObj, found := annotDict.Find("TM"); found {
		if name, err := pctx.DereferenceStringOrHexLiteral(tmObj, model.V10, nil); err == nil && name != "" {
			return name, true
		}
	}
	return "", false
}

// fieldValue extracts the widget's value. Text and choice widgets yield the
// parsed /V string; checkbox-style widgets yield a bool from the /V name,
// falling back to the appearance state /AS when /V is absent.
func fieldValue(pctx *model.Context, annotDict types.Dict) (any, bool) {
	ft := fieldType(pctx, annotDict)

	valueObj, hasValue := annotDict.Find("V")

	if ft == "Btn" {
		if hasValue {
			if state, err := pctx.DereferenceName(valueObj, model.V10, nil); err == nil {
				return checkboxOn(string(state)), true
			}
		}
		if asObj, found := annotDict.Find("AS"); found {
			if state, err := pctx.DereferenceName(asObj, model.V10, nil); err == nil {
				return checkboxOn(string(state)), true
			}
		}
		return nil, false
	}

	if !hasValue {
		return nil, false
	}
	if val, err := pctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
		if val == "" {
			return nil, false
		}
		return val, true
	}
	// Some producers store plain values as names.
	if val, err := pctx.DereferenceName(valueObj, model.V10, nil); err == nil && val != "" {
		return string(val), true
	}
	return nil, false
}

// fieldType determines the /FT entry, checking the parent chain for
// inherited types the same way viewers do.
func fieldType(pctx *model.Context, annotDict types.Dict) string {
	dict := annotDict
	for i := 0; i < 10 && dict != nil; i++ {
		if ftObj, found := dict.Find("FT"); found {
			if ft, err := pctx.DereferenceName(ftObj, model.V10, nil); err == nil {
				return string(ft)
			}
		}
		parentObj, found := dict.Find("Parent")
		if !found {
			break
		}
		parent, err := pctx.DereferenceDict(parentObj)
		if err != nil {
			break
		}
		dict = parent
	}
	return ""
}

func checkboxOn(state string) bool {
	return state != "" && state != "Off"
}

// String renders the map for debug output, one field per line.
func (m RawFieldMap) String() string {
	var buf bytes.Buffer
	for name, value := range m {
		fmt.Fprintf(&buf, "%s = %v\n", name, value)
	}
	return buf.String()
}
