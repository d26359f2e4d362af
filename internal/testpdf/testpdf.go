// Package testpdf builds minimal fillable PDFs for tests.
//
// The generated documents carry a proper page tree, per-page /Annots widget
// annotations, and an /AcroForm catalog entry. Cross-reference offsets are
// computed while writing, so the output is always a structurally valid
// PDF 1.4 document without shipping binary fixtures.
package testpdf

import (
	"bytes"
	"fmt"
	"strings"
)

// Field describes one widget annotation.
type Field struct {
	Name     string
	Value    string
	Checkbox bool
	On       bool // checkbox state, ignored for text fields
}

// Text returns a filled text widget.
func Text(name, value string) Field {
	return Field{Name: name, Value: value}
}

// Checkbox returns a checkbox widget with the given state.
func Checkbox(name string, on bool) Field {
	return Field{Name: name, Checkbox: true, On: on}
}

// Page is the set of widgets on one page.
type Page []Field

// Build assembles a PDF with one page per argument.
func Build(pages ...Page) []byte {
	// Object numbering: 1 catalog, 2 page tree, then pages, then widgets.
	pageObjStart := 3
	widgetObjStart := pageObjStart + len(pages)

	var widgetRefs []string
	widgetObj := widgetObjStart
	pageWidgets := make([][]int, len(pages))
	for i, page := range pages {
		for range page {
			pageWidgets[i] = append(pageWidgets[i], widgetObj)
			widgetRefs = append(widgetRefs, fmt.Sprintf("%d 0 R", widgetObj))
			widgetObj++
		}
	}
	totalObjs := widgetObj - 1

	bodies := make(map[int]string)
	bodies[1] = fmt.Sprintf("<< /Type /Catalog /Pages 2 0 R /AcroForm << /Fields [%s] >> >>",
		strings.Join(widgetRefs, " "))

	var kids []string
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", pageObjStart+i))
	}
	bodies[2] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(pages))

	for i, page := range pages {
		var annots []string
		for _, obj := range pageWidgets[i] {
			annots = append(annots, fmt.Sprintf("%d 0 R", obj))
		}
		body := "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792]"
		if len(page) > 0 {
			body += fmt.Sprintf(" /Annots [%s]", strings.Join(annots, " "))
		}
		body += " >>"
		bodies[pageObjStart+i] = body
	}

	widgetObj = widgetObjStart
	for i, page := range pages {
		for _, f := range page {
			bodies[widgetObj] = widgetBody(f, pageObjStart+i)
			widgetObj++
		}
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, totalObjs+1)
	for obj := 1; obj <= totalObjs; obj++ {
		offsets[obj] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", obj, bodies[obj])
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", totalObjs+1)
	buf.WriteString("0000000000 65535 f \n")
	for obj := 1; obj <= totalObjs; obj++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[obj])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		totalObjs+1, xrefOffset)

	return buf.Bytes()
}

func widgetBody(f Field, pageObj int) string {
	if f.Checkbox {
		state := "/Off"
		if f.On {
			state = "/Yes"
		}
		return fmt.Sprintf(
			"<< /Type /Annot /Subtype /Widget /FT /Btn /T (%s) /V %s /AS %s /Rect [0 0 18 18] /P %d 0 R >>",
			escape(f.Name), state, state, pageObj)
	}
	return fmt.Sprintf(
		"<< /Type /Annot /Subtype /Widget /FT /Tx /T (%s) /V (%s) /Rect [0 0 144 18] /P %d 0 R >>",
		escape(f.Name), escape(f.Value), pageObj)
}

func escape(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return r.Replace(s)
}
