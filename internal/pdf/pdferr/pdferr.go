// Package pdferr defines the error taxonomy for PDF document opening.
//
// Only failures to open or parse a document are errors. Missing fields,
// empty documents, and other content-level surprises are expected outcomes
// for hand-authored sheets and are never reported through this package.
package pdferr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedDocument indicates the bytes could not be parsed as a PDF.
var ErrMalformedDocument = errors.New("malformed PDF document")

// ErrEncryptedDocument indicates the document uses encryption the pipeline
// does not handle. Callers treat it like a malformed document.
var ErrEncryptedDocument = fmt.Errorf("%w: unsupported encryption", ErrMalformedDocument)

// WrapOpen classifies a low-level read failure from the PDF engine into the
// package taxonomy, preserving the cause.
func WrapOpen(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "encrypt") || strings.Contains(msg, "decrypt") || strings.Contains(msg, "password") {
		return fmt.Errorf("%w: %v", ErrEncryptedDocument, err)
	}
	return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
}

// IsMalformed reports whether err belongs to the open-failure taxonomy.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedDocument)
}
