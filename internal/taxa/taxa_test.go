package taxa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/arbitrary-partials/internal/document"
)

func TestNewKeepsOrder(t *testing.T) {
	set, err := New("human", " chimp ", "gorilla")
	require.NoError(t, err)
	assert.Equal(t, 3, set.Count())
	assert.Equal(t, []string{"human", "chimp", "gorilla"}, set.IDs())
	assert.Equal(t, Taxon{ID: "chimp"}, set.At(1))

	i, ok := set.IndexOf("gorilla")
	require.True(t, ok)
	assert.Equal(t, 2, i)
	_, ok = set.IndexOf("bonobo")
	assert.False(t, ok)
}

func TestNewRejectsInvalidLists(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
	_, err = New("a", "")
	assert.Error(t, err)
	_, err = New("a", "b", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicates taxon[0] "a"`)
}

func TestIDsReturnsCopy(t *testing.T) {
	set, err := New("a", "b")
	require.NoError(t, err)
	ids := set.IDs()
	ids[0] = "z"
	assert.Equal(t, "a", set.At(0).ID)
}

func parseTaxa(t *testing.T, src string) *document.Node {
	t.Helper()
	root, err := document.ParseYAML([]byte(src))
	require.NoError(t, err)
	node, ok := root.Child(ElementName)
	require.True(t, ok)
	return node
}

func TestFromNode(t *testing.T) {
	node := parseTaxa(t, `
taxa:
  id: primates
  taxon:
    - id: human
    - id: chimp
`)
	set, err := FromNode(node)
	require.NoError(t, err)
	assert.Equal(t, "primates", set.ID())
	assert.Equal(t, []string{"human", "chimp"}, set.IDs())
}

func TestFromNodeStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "no taxa", src: "taxa:\n  id: t\n", want: `missing required element "taxon"`},
		{name: "taxon without id", src: "taxa:\n  taxon:\n    - name: a\n", want: `missing required attribute "id"`},
		{name: "duplicate", src: "taxa:\n  taxon:\n    - id: a\n    - id: a\n", want: `taxon "a" duplicates taxon[0]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromNode(parseTaxa(t, tt.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, document.ErrStructure)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParserMetadata(t *testing.T) {
	p := Parser{}
	assert.Equal(t, "taxa", p.Name())
	assert.Equal(t, "*taxa.Set", p.Returns())
	assert.NotEmpty(t, p.Description())
	require.Len(t, Plugin{}.Parsers(), 1)
}
