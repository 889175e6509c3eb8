package amge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectLocalBasis(t *testing.T) {
	b, err := CollectLocalBasis([]AgglomerateBasis{
		{
			Agglomerate: 10,
			DoFs:        []int{0, 1, 2},
			Eigenvectors: [][]float64{
				{1, 1, 1},
				{-1, 0, 1},
			},
		},
		// no eigenvector: no rows
		{Agglomerate: 11, DoFs: []int{2, 3}},
		// DoF 2 is shared, and gets a row of its own here
		{
			Agglomerate:  12,
			DoFs:         []int{2, 3, 4},
			Eigenvectors: [][]float64{{0.5, 0.5, 0.5}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 1, 1}, {-1, 0, 1}, {0.5, 0.5, 0.5}},
		b.Eigenvectors)
	assert.Equal(t, [][]int{{0, 1, 2}, {0, 1, 2}, {2, 3, 4}}, b.DoFIndicesMaps)
	assert.Equal(t, []int{2, 0, 1}, b.NumLocalEigenvectors)
	assert.Nil(t, b.DiagElements)
	assert.Equal(t, 3, b.NumRows())
	assert.NoError(t, b.Validate())

	// rows do not alias each other
	b.DoFIndicesMaps[0][0] = 7
	assert.Equal(t, 0, b.DoFIndicesMaps[1][0])
}

func TestCollectLocalBasis_Invariants(t *testing.T) {
	_, err := CollectLocalBasis([]AgglomerateBasis{
		{Agglomerate: 1, DoFs: []int{4, 5, 4}, Eigenvectors: [][]float64{{1, 1, 1}}},
	})
	assert.ErrorIs(t, err, ErrInvariant)
	assert.ErrorContains(t, err, "duplicate DoF 4")

	_, err = CollectLocalBasis([]AgglomerateBasis{
		{Agglomerate: 1, DoFs: []int{4, 5}, Eigenvectors: [][]float64{{1}}},
	})
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestLocalBasis_Validate(t *testing.T) {
	valid := func() *LocalBasis {
		return &LocalBasis{
			Eigenvectors:         [][]float64{{1, 2}, {3, 4}},
			DoFIndicesMaps:       [][]int{{0, 1}, {1, 2}},
			DiagElements:         [][]float64{{1, 0.5}, {0.5, 1}},
			NumLocalEigenvectors: []int{1, 1},
		}
	}
	tests := []struct {
		name   string
		modify func(b *LocalBasis)
	}{
		{"MapRows", func(b *LocalBasis) { b.DoFIndicesMaps = b.DoFIndicesMaps[:1] }},
		{"WeightRows", func(b *LocalBasis) { b.DiagElements = b.DiagElements[:1] }},
		{"Counts", func(b *LocalBasis) { b.NumLocalEigenvectors = []int{1} }},
		{"NegativeCount", func(b *LocalBasis) { b.NumLocalEigenvectors = []int{3, -1} }},
		{"Slots", func(b *LocalBasis) { b.Eigenvectors[1] = []float64{3} }},
		{"WeightSlots", func(b *LocalBasis) { b.DiagElements[0] = []float64{1} }},
		{"DuplicateColumn", func(b *LocalBasis) { b.DoFIndicesMaps[1] = []int{2, 2} }},
	}
	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid()
			tt.modify(b)
			err := b.Validate()
			assert.ErrorIs(t, err, ErrInvariant)
			var invariantErr *InvariantError
			assert.ErrorAs(t, err, &invariantErr)
		})
	}
}
