package buffers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/richinsley/goquad/gpu"
)

func TestLayoutFloatStride(t *testing.T) {
	for _, counts := range [][]int32{
		{1},
		{2},
		{3, 2},
		{4, 4, 4, 4},
		{1, 2, 3, 4, 3, 2, 1},
	} {
		var l Layout
		var sum int32
		for _, n := range counts {
			l.Push(n, Float32)
			sum += n
		}
		assert.Equal(t, 4*sum, l.Stride(), "counts %v", counts)
		assert.Equal(t, len(counts), l.Len())
	}
}

func TestLayoutMixedOffsets(t *testing.T) {
	var l Layout
	l.Push(2, Float32)
	l.Push(3, Uint8)

	assert.Equal(t, int32(0), l.Offset(0))
	assert.Equal(t, int32(8), l.Offset(1))
	assert.Equal(t, int32(11), l.Stride())
	assert.Equal(t, l.Stride(), l.Offset(l.Len()))
}

func TestLayoutEmpty(t *testing.T) {
	var l Layout
	assert.Zero(t, l.Stride())
	assert.Empty(t, l.Elements())
	assert.Zero(t, l.Len())
}

func TestLayoutNormalization(t *testing.T) {
	var l Layout
	l.PushUint8(4)
	l.PushNormalized(4, Uint8, true)
	l.PushNormalized(2, Float32, true)
	l.PushFloat32(3)
	l.PushUint32(1)

	e := l.Elements()
	assert.False(t, e[0].Normalized)
	assert.True(t, e[1].Normalized)
	assert.False(t, e[2].Normalized, "floats are never normalized")
	assert.False(t, e[3].Normalized)
	assert.False(t, e[4].Normalized)
	assert.Equal(t, int32(4+4+8+12+4), l.Stride())
}

func TestLayoutElementsIsCopy(t *testing.T) {
	var l Layout
	l.Push(2, Float32)
	e := l.Elements()
	e[0].Count = 4
	assert.Equal(t, int32(2), l.Elements()[0].Count)
	assert.Equal(t, int32(8), l.Stride())
}

func TestLayoutRejectsComponentCount(t *testing.T) {
	var l Layout
	assert.Panics(t, func() { l.Push(0, Float32) })
	assert.Panics(t, func() { l.Push(5, Uint8) })
	assert.Zero(t, l.Len())
}

func TestLayoutOffsetOutOfRange(t *testing.T) {
	var l Layout
	l.PushFloat32(3)
	assert.Equal(t, int32(12), l.Offset(1))
	assert.PanicsWithValue(t, "buffers: attribute index 2 outside 0..1", func() { l.Offset(2) })
	assert.Panics(t, func() { l.Offset(-1) })
}

func TestTypeTable(t *testing.T) {
	for _, tc := range []struct {
		typ  Type
		size int32
		gl   gpu.Enum
	}{
		{Float32, 4, gpu.Float},
		{Uint32, 4, gpu.UnsignedInt},
		{Uint8, 1, gpu.UnsignedByte},
		{Int8, 1, gpu.Byte},
		{Int16, 2, gpu.Short},
		{Uint16, 2, gpu.UnsignedShort},
		{Int32, 4, gpu.Int},
		{HalfFloat, 2, gpu.HalfFloat},
	} {
		assert.Equal(t, tc.size, tc.typ.Size(), tc.typ.String())
		assert.Equal(t, tc.gl, tc.typ.GLType(), tc.typ.String())
	}
	assert.Panics(t, func() { Type(200).Size() })
	assert.Equal(t, "Type(200)", Type(200).String())
}
