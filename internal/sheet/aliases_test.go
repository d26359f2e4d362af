package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAliasTable_KnownFields(t *testing.T) {
	table := DefaultAliasTable()

	assert.Equal(t, []string{"CharacterName", "Character Name", "CharName", "Name"}, table.Candidates(fieldCharacterName))
	assert.NotEmpty(t, table.Candidates(fieldMaxHP))
	assert.Nil(t, table.Candidates("noSuchField"))
}

func TestNewAliasTable_MergesDuplicateFields(t *testing.T) {
	table := NewAliasTable([]Alias{
		{Field: "x", Names: []string{"A"}},
		{Field: "x", Names: []string{"B"}},
	})

	assert.Equal(t, []string{"A", "B"}, table.Candidates("x"))
}

func TestMergeOverlay_AppendsAfterBuiltins(t *testing.T) {
	table := DefaultAliasTable()
	builtin := len(table.Candidates(fieldMaxHP))

	overlay := []byte(`
aliases:
  - field: maxHP
    names: ["PV Max", "PuntosDeVidaMax"]
  - field: customField
    names: ["Custom"]
`)
	require.NoError(t, table.MergeOverlay(overlay))

	got := table.Candidates(fieldMaxHP)
	require.Len(t, got, builtin+2)
	assert.Equal(t, "PV Max", got[builtin])
	assert.Equal(t, []string{"Custom"}, table.Candidates("customField"))
}

func TestMergeOverlay_SkipsIncompleteEntries(t *testing.T) {
	table := NewAliasTable(nil)

	overlay := []byte(`
aliases:
  - field: ""
    names: ["Orphan"]
  - field: empty
    names: []
`)
	require.NoError(t, table.MergeOverlay(overlay))
	assert.Nil(t, table.Candidates("empty"))
}

func TestMergeOverlay_InvalidYAML(t *testing.T) {
	table := NewAliasTable(nil)
	assert.Error(t, table.MergeOverlay([]byte("aliases: [unclosed")))
}
