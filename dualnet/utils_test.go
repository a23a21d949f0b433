package dual

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestBatcher(t *testing.T) {
	xs := tensor.New(tensor.WithShape(6, 2), tensor.WithBacking([]float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}))
	vs := tensor.New(tensor.WithShape(6), tensor.WithBacking([]float32{0, 1, 2, 3, 4, 5}))

	b := batcher{size: 2}
	cut := b.batch(1, xs, vs)
	require.NoError(t, b.err)
	require.Len(t, cut, 2)
	assert.Equal(t, tensor.Shape{2, 2}, cut[0].Shape())
	assert.Equal(t, []float32{2, 3}, []float32{cut[1].Get(0).(float32), cut[1].Get(1).(float32)})
	assert.Equal(t, float32(4), cut[0].Get(0).(float32))

	assert.Nil(t, b.batch(3, xs, vs), "rows 6 and 7 do not exist")
	assert.Error(t, b.err)
	assert.Nil(t, b.batch(0, xs, vs), "errors stick")
}
