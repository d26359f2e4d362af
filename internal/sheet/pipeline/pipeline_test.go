package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollkeeper/rollkeeper/internal/pdf/pdferr"
	"github.com/rollkeeper/rollkeeper/internal/sheet"
	"github.com/rollkeeper/rollkeeper/internal/testpdf"
)

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	return p
}

func TestRun_FullSheet(t *testing.T) {
	p := testPipeline(t)

	doc := testpdf.Build(testpdf.Page{
		testpdf.Text("CharacterName", "Mira"),
		testpdf.Text("ClassLevel", "Barbarian 3"),
		testpdf.Text("Race", "Half-Orc"),
		testpdf.Text("Background", "Outlander"),
		testpdf.Text("HPMax", "35"),
		testpdf.Text("AC", "13"),
		testpdf.Text("STR", "16"),
		testpdf.Text("DEX", "14"),
		testpdf.Text("CON", "15"),
		testpdf.Text("INT", "8"),
		testpdf.Text("WIS", "12"),
		testpdf.Text("CHA", "10"),
	})

	rec, err := p.Run(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, "Mira", rec.CharacterName)
	assert.Equal(t, "Barbarian 3", rec.ClassLevel)
	assert.Equal(t, "Half-Orc", rec.Race)
	assert.Equal(t, "35", rec.MaxHP)
	assert.Equal(t, "35", rec.CurrentHP)
	assert.Equal(t, "13", rec.AC)
	assert.Len(t, rec.AbilityScores, 6)
	assert.Equal(t, "16", rec.AbilityScores["strength"])
	assert.Empty(t, rec.SpellcastingAbility)
}

func TestRun_CasterGetsSpellcastingAbility(t *testing.T) {
	p := testPipeline(t)

	doc := testpdf.Build(testpdf.Page{
		testpdf.Text("ClassLevel", "Wizard 5"),
		testpdf.Text("SpellName1", "Shield"),
	})

	rec, err := p.Run(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, sheet.AbilityINT, rec.SpellcastingAbility)
	assert.Equal(t, []string{"Shield"}, rec.Spells)
}

func TestRun_CheckboxValues(t *testing.T) {
	p := testPipeline(t)

	doc := testpdf.Build(testpdf.Page{
		testpdf.Checkbox("Inspiration", true),
		testpdf.Checkbox("SecondWind", false),
	})

	_, err := p.Run(context.Background(), doc)
	require.NoError(t, err)
}

func TestRun_NoRecognizableFieldsYieldsEmptyRecord(t *testing.T) {
	p := testPipeline(t)

	doc := testpdf.Build(testpdf.Page{
		testpdf.Text("SomethingUnrelatedEntirely", "zzz"),
	})

	rec, err := p.Run(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, rec)
}

func TestRun_MalformedDocument(t *testing.T) {
	p := testPipeline(t)

	_, err := p.Run(context.Background(), []byte("%PDF-1.4 but not really"))
	require.Error(t, err)
	assert.True(t, pdferr.IsMalformed(err))
}

func TestRun_LaterPageWins(t *testing.T) {
	p := testPipeline(t)

	doc := testpdf.Build(
		testpdf.Page{testpdf.Text("HPMax", "10")},
		testpdf.Page{testpdf.Text("HPMax", "12")},
	)

	rec, err := p.Run(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "12", rec.MaxHP)
}
