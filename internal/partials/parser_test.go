package partials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/arbitrary-partials/internal/document"
	"github.com/kingrea/arbitrary-partials/internal/plugin"
	"github.com/kingrea/arbitrary-partials/internal/taxa"
	"github.com/kingrea/arbitrary-partials/internal/tip"
)

func newRegistry(t *testing.T) *plugin.Registry {
	t.Helper()
	reg := plugin.NewRegistry()
	require.NoError(t, reg.Install(taxa.Plugin{}, Plugin{}))
	return reg
}

func parseModel(t *testing.T, src string) (*Model, error) {
	t.Helper()
	root, err := document.ParseYAML([]byte(src))
	require.NoError(t, err)
	store, err := newRegistry(t).ParseDocument(root)
	if err != nil {
		return nil, err
	}
	value, ok := store.First(ElementName)
	require.True(t, ok)
	return value.(*Model), nil
}

func TestParseSingleTaxonRoundTrip(t *testing.T) {
	model, err := parseModel(t, `
partialsAlignment:
  taxa:
    taxon:
      - id: only
  sequence:
    - partial:
        - p: [0.1, 0.9]
        - p: [0.3, 0.7]
`)
	require.NoError(t, err)
	buf := make([]float64, 4)
	require.NoError(t, model.TipPartials(0, buf))
	assert.Equal(t, []float64{0.1, 0.9, 0.3, 0.7}, buf)
	assert.Equal(t, tip.KindPartials, model.Kind())
}

func TestParseResolvesTaxaByIDRef(t *testing.T) {
	model, err := parseModel(t, `
taxa:
  id: taxa
  taxon:
    - id: human
    - id: chimp
partialsAlignment:
  id: alignment
  taxa:
    idref: taxa
  sequence:
    - taxon: human
      partial:
        - p: [0.1, 0.9]
        - p: "0.3 0.7"
    - partial:
        - p: [0.5, 0.5]
        - p: [1, 0]
`)
	require.NoError(t, err)
	assert.Equal(t, "alignment", model.ID())
	assert.Equal(t, []string{"human", "chimp"}, model.Taxa().IDs())
	assert.Equal(t, 2, model.Matrix().Sites())

	buf := make([]float64, 4)
	require.NoError(t, model.TipPartials(1, buf))
	assert.Equal(t, []float64{0.5, 0.5, 1, 0}, buf)
}

func TestParseKeepsVariableVectorLengths(t *testing.T) {
	model, err := parseModel(t, `
partialsAlignment:
  taxa:
    taxon:
      - id: a
  sequence:
    - partial:
        - p: [1]
        - p: [0.2, 0.3, 0.5]
`)
	require.NoError(t, err)
	n, err := model.PartialsLen(0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestParseStructuralFailures(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing taxa",
			src: `
partialsAlignment:
  sequence:
    - partial:
        - p: [1, 0]
`,
			want: `missing required element "taxa"`,
		},
		{
			name: "two taxa references",
			src: `
partialsAlignment:
  taxa:
    - taxon: [{id: a}]
    - taxon: [{id: b}]
  sequence:
    - partial:
        - p: [1, 0]
`,
			want: `element "taxa" appears 2 times`,
		},
		{
			name: "no sequences",
			src: `
partialsAlignment:
  taxa:
    taxon:
      - id: a
`,
			want: `missing required element "sequence"`,
		},
		{
			name: "sequence without partials",
			src: `
partialsAlignment:
  taxa:
    taxon:
      - id: a
  sequence:
    - taxon: a
`,
			want: `missing required element "partial"`,
		},
		{
			name: "partial without p",
			src: `
partialsAlignment:
  taxa:
    taxon:
      - id: a
  sequence:
    - partial:
        - q: [1, 0]
`,
			want: `missing required attribute "p"`,
		},
		{
			name: "non numeric p",
			src: `
partialsAlignment:
  taxa:
    taxon:
      - id: a
  sequence:
    - partial:
        - p: [0.5, half]
`,
			want: `is not a number`,
		},
		{
			name: "fewer sequences than taxa",
			src: `
partialsAlignment:
  taxa:
    taxon:
      - id: a
      - id: b
  sequence:
    - partial:
        - p: [1, 0]
`,
			want: `1 sequences for 2 taxa`,
		},
		{
			name: "more sequences than taxa",
			src: `
partialsAlignment:
  taxa:
    taxon:
      - id: a
  sequence:
    - partial:
        - p: [1, 0]
    - partial:
        - p: [1, 0]
`,
			want: `sequence 1 has no taxon`,
		},
		{
			name: "ragged sites",
			src: `
partialsAlignment:
  taxa:
    taxon:
      - id: a
      - id: b
  sequence:
    - partial:
        - p: [1, 0]
        - p: [1, 0]
    - partial:
        - p: [1, 0]
`,
			want: `sequence has 1 partials, expected 2`,
		},
		{
			name: "taxon out of order",
			src: `
partialsAlignment:
  taxa:
    taxon:
      - id: a
      - id: b
  sequence:
    - taxon: b
      partial:
        - p: [1, 0]
    - partial:
        - p: [1, 0]
`,
			want: `taxon "b" is taxon 1 but its sequence is row 0`,
		},
		{
			name: "unknown taxon",
			src: `
partialsAlignment:
  taxa:
    taxon:
      - id: a
  sequence:
    - taxon: z
      partial:
        - p: [1, 0]
`,
			want: `unknown taxon "z"`,
		},
		{
			name: "missing idref target",
			src: `
partialsAlignment:
  taxa:
    idref: nowhere
  sequence:
    - partial:
        - p: [1, 0]
`,
			want: `idref "nowhere" does not name an earlier element`,
		},
		{
			name: "idref to wrong type",
			src: `
- taxa:
    id: t
    taxon: [{id: a}]
- partialsAlignment:
    id: first
    taxa: {idref: t}
    sequence:
      - partial: [{p: [1, 0]}]
- partialsAlignment:
    taxa: {idref: first}
    sequence:
      - partial: [{p: [1, 0]}]
`,
			want: `not a taxon list`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := parseModel(t, tt.src)
			require.Error(t, err)
			assert.Nil(t, model)
			assert.ErrorIs(t, err, document.ErrStructure)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseDirectlyWithoutRegistry(t *testing.T) {
	root, err := document.ParseYAML([]byte(`
partialsAlignment:
  taxa:
    taxon: [{id: a}]
  sequence:
    - partial: [{p: "0.25, 0.75"}]
`))
	require.NoError(t, err)
	node, ok := root.Child(ElementName)
	require.True(t, ok)

	value, err := Parser{}.Parse(plugin.NewStore(), node)
	require.NoError(t, err)
	model := value.(*Model)
	v, err := model.Matrix().Vector(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.75}, v)
}

func TestParserMetadata(t *testing.T) {
	p := Parser{}
	assert.Equal(t, "partialsAlignment", p.Name())
	assert.Equal(t, "Represents an alignment of partial probability vectors instead of states.", p.Description())
	assert.Equal(t, "*partials.Model", p.Returns())
	require.Len(t, Plugin{}.Parsers(), 1)
}
