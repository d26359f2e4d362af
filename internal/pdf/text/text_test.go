package text

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollkeeper/rollkeeper/internal/pdf/pdferr"
	"github.com/rollkeeper/rollkeeper/internal/testpdf"
)

func TestExtractPages_PageCount(t *testing.T) {
	doc := testpdf.Build(
		testpdf.Page{testpdf.Text("CharacterName", "Mira")},
		testpdf.Page{testpdf.Text("MaxHP", "35")},
	)

	pages, err := NewExtractor().ExtractPages(context.Background(), doc)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestExtract_MalformedDocument(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"not a pdf", []byte("plain text file")},
		{"empty", nil},
		{"truncated header", []byte("%PDF-1.4")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewExtractor().Extract(context.Background(), tc.input)
			require.Error(t, err)
			assert.True(t, pdferr.IsMalformed(err))
		})
	}
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := testpdf.Build(testpdf.Page{testpdf.Text("CharacterName", "Mira")})
	_, err := NewExtractor().Extract(ctx, doc)
	assert.ErrorIs(t, err, context.Canceled)
}
