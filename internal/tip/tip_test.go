package tip

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/arbitrary-partials/internal/taxa"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "discrete-states", KindDiscreteStates.String())
	assert.Equal(t, "partials", KindPartials.String())
	assert.Equal(t, "kind(7)", Kind(7).String())
}

func TestErrorsMatchSentinels(t *testing.T) {
	err := error(Unsupported("TipStates", "no states here"))
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.NotErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, "tip: TipStates: no states here", err.Error())
	assert.Equal(t, "tip: Op is not supported", Unsupported("Op", "").Error())

	wrapped := errors.Join(errors.New("context"), CheckTaxon(5, 2))
	assert.ErrorIs(t, wrapped, ErrOutOfBounds)
	var bounds *BoundsError
	require.True(t, errors.As(wrapped, &bounds))
	assert.Equal(t, 5, bounds.Index)

	assert.Equal(t, "tip: taxon -1 out of range [0, 3)", CheckTaxon(-1, 3).Error())
	assert.Equal(t, "tip: buffer of length 2 is smaller than 4", CheckBuffer(2, 4).Error())
	assert.NoError(t, CheckTaxon(0, 1))
	assert.NoError(t, CheckBuffer(4, 4))
}

func newStates(t *testing.T) *StatesModel {
	t.Helper()
	set, err := taxa.New("a", "b")
	require.NoError(t, err)
	m, err := NewStatesModel(set, [][]int{{0, 1, 2}, {3, 2, 1}})
	require.NoError(t, err)
	return m
}

func TestStatesModel(t *testing.T) {
	m := newStates(t)
	assert.Equal(t, KindDiscreteStates, m.Kind())
	assert.Equal(t, 2, m.TaxonCount())

	buf := make([]int, 3)
	require.NoError(t, m.TipStates(1, buf))
	assert.Equal(t, []int{3, 2, 1}, buf)

	assert.ErrorIs(t, m.TipStates(2, buf), ErrOutOfBounds)
	assert.ErrorIs(t, m.TipStates(0, make([]int, 2)), ErrOutOfBounds)
	assert.ErrorIs(t, m.TipPartials(0, make([]float64, 3)), ErrUnsupported)
	assert.NoError(t, m.OnTaxaChanged())
}

func TestNewStatesModelValidates(t *testing.T) {
	set, err := taxa.New("a", "b")
	require.NoError(t, err)

	_, err = NewStatesModel(nil, nil)
	assert.Error(t, err)
	_, err = NewStatesModel(set, [][]int{{0}})
	assert.Error(t, err)
	_, err = NewStatesModel(set, [][]int{{0}, {0, 1}})
	assert.Error(t, err)
}

func TestCollectStates(t *testing.T) {
	tips, err := Collect(newStates(t), 3, 4)
	require.NoError(t, err)
	assert.Equal(t, KindDiscreteStates, tips.Kind)
	assert.Nil(t, tips.Partials)
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 2, 1}}, tips.States)
}

func TestCollectErrors(t *testing.T) {
	_, err := Collect(nil, 1, 1)
	assert.Error(t, err)

	_, err = Collect(newStates(t), 0, 1)
	assert.Error(t, err)

	_, err = Collect(newStates(t), 2, 1)
	require.ErrorIs(t, err, ErrOutOfBounds)
	assert.Contains(t, err.Error(), "tip: taxon 0:")
}

type brokenModel struct{ *StatesModel }

func (brokenModel) Kind() Kind { return KindPartials }

func TestCollectPropagatesUnsupported(t *testing.T) {
	_, err := Collect(brokenModel{newStates(t)}, 3, 2)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = Collect(brokenModel{newStates(t)}, 3, 0)
	assert.Error(t, err)
}
