package buffers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goquad/gpu"
	"github.com/richinsley/goquad/gpu/gputest"
)

func layoutOf(counts ...int32) *Layout {
	l := &Layout{}
	for _, n := range counts {
		l.Push(n, Float32)
	}
	return l
}

func TestVertexArrayQuad(t *testing.T) {
	dev, fake, out := newDevice(t)

	vb, err := NewVertexBuffer(dev, Bytes(quad))
	require.NoError(t, err)
	var layout Layout
	layout.Push(2, Float32)

	va, err := NewVertexArray(dev)
	require.NoError(t, err)
	assert.Empty(t, va.Slots())
	require.NoError(t, va.Attach(vb, &layout))

	assert.Equal(t, int32(8), layout.Stride())
	assert.Equal(t, []Slot{{
		Index:     0,
		Attribute: Attribute{Count: 2, Type: Float32},
		Stride:    8,
		Offset:    0,
		Buffer:    vb.ID(),
	}}, va.Slots())

	state := fake.Array(va.ID())
	require.Len(t, state.Attribs, 1)
	a := state.Attribs[0]
	assert.True(t, a.Enabled)
	assert.Equal(t, int32(2), a.Size)
	assert.Equal(t, gpu.Float, a.Type)
	assert.False(t, a.Normalized)
	assert.Equal(t, int32(8), a.Stride)
	assert.Equal(t, uintptr(0), a.Offset)
	assert.Equal(t, vb.ID(), a.Buffer)
	assert.Equal(t, va.ID(), fake.BoundArray())
	assert.Empty(t, out.String())
}

func TestVertexArrayMixedOffsets(t *testing.T) {
	dev, fake, _ := newDevice(t)
	vb, err := NewVertexBuffer(dev, make([]byte, 11*3))
	require.NoError(t, err)
	var layout Layout
	layout.Push(2, Float32)
	layout.PushNormalized(3, Uint8, true)

	va, err := NewVertexArray(dev)
	require.NoError(t, err)
	require.NoError(t, va.Attach(vb, &layout))

	attribs := fake.Array(va.ID()).Attribs
	assert.Equal(t, uintptr(8), attribs[1].Offset)
	assert.Equal(t, gpu.UnsignedByte, attribs[1].Type)
	assert.True(t, attribs[1].Normalized)
	assert.Equal(t, int32(11), attribs[1].Stride)
}

func TestVertexArrayEmptyLayout(t *testing.T) {
	dev, fake, out := newDevice(t)
	vb, err := NewVertexBuffer(dev, Bytes(quad))
	require.NoError(t, err)
	va, err := NewVertexArray(dev)
	require.NoError(t, err)

	require.NoError(t, va.Attach(vb, &Layout{}))
	assert.Empty(t, va.Slots())
	assert.Empty(t, fake.Array(va.ID()).Attribs)
	assert.Zero(t, va.NextSlot())
	assert.Empty(t, out.String())
}

// Attach always starts at slot 0, so a second call overwrites the slots the
// layouts share and leaves the rest of the first layout in place.
func TestVertexArrayAttachOverlap(t *testing.T) {
	for _, tc := range []struct{ k1, k2 int }{{3, 1}, {2, 2}, {1, 3}, {4, 2}} {
		dev, fake, _ := newDevice(t)
		first, err := NewVertexBuffer(dev, make([]byte, 64))
		require.NoError(t, err)
		second, err := NewVertexBuffer(dev, make([]byte, 64))
		require.NoError(t, err)

		l1 := &Layout{}
		for i := 0; i < tc.k1; i++ {
			l1.Push(4, Float32)
		}
		l2 := &Layout{}
		for i := 0; i < tc.k2; i++ {
			l2.Push(1, Uint8)
		}

		va, err := NewVertexArray(dev)
		require.NoError(t, err)
		require.NoError(t, va.Attach(first, l1))
		require.NoError(t, va.Attach(second, l2))

		attribs := fake.Array(va.ID()).Attribs
		slots := va.Slots()
		want := tc.k1
		if tc.k2 > want {
			want = tc.k2
		}
		require.Len(t, slots, want)
		for i := 0; i < want; i++ {
			a := attribs[uint32(i)]
			if i < tc.k2 {
				assert.Equal(t, second.ID(), a.Buffer, "slot %d", i)
				assert.Equal(t, int32(1), a.Size)
				assert.Equal(t, gpu.UnsignedByte, a.Type)
				assert.Equal(t, uintptr(i), a.Offset)
				assert.Equal(t, second.ID(), slots[i].Buffer)
			} else {
				assert.Equal(t, first.ID(), a.Buffer, "slot %d", i)
				assert.Equal(t, int32(4), a.Size)
				assert.Equal(t, gpu.Float, a.Type)
				assert.Equal(t, uintptr(16*i), a.Offset)
				assert.Equal(t, first.ID(), slots[i].Buffer)
			}
		}
	}
}

func TestVertexArrayAppend(t *testing.T) {
	dev, fake, _ := newDevice(t)
	positions, err := NewVertexBuffer(dev, Bytes(quad))
	require.NoError(t, err)
	colors, err := NewVertexBuffer(dev, make([]byte, 4*4))
	require.NoError(t, err)

	va, err := NewVertexArray(dev)
	require.NoError(t, err)
	require.NoError(t, va.Append(positions, layoutOf(2)))
	var colorLayout Layout
	colorLayout.PushNormalized(4, Uint8, true)
	require.NoError(t, va.Append(colors, &colorLayout))

	attribs := fake.Array(va.ID()).Attribs
	require.Len(t, attribs, 2)
	assert.Equal(t, positions.ID(), attribs[0].Buffer)
	assert.Equal(t, colors.ID(), attribs[1].Buffer)
	assert.Equal(t, uintptr(0), attribs[1].Offset)
	assert.Equal(t, int32(4), attribs[1].Stride)
	assert.Equal(t, uint32(2), va.NextSlot())
}

func TestVertexArrayAttachAt(t *testing.T) {
	dev, fake, _ := newDevice(t)
	vb, err := NewVertexBuffer(dev, make([]byte, 80))
	require.NoError(t, err)
	va, err := NewVertexArray(dev)
	require.NoError(t, err)

	require.NoError(t, va.AttachAt(vb, layoutOf(3, 2), 5))
	attribs := fake.Array(va.ID()).Attribs
	assert.Len(t, attribs, 2)
	assert.Equal(t, uintptr(0), attribs[5].Offset)
	assert.Equal(t, uintptr(12), attribs[6].Offset)
	assert.Equal(t, uint32(7), va.NextSlot())

	// Attach still targets slot 0 and does not move the cursor back.
	require.NoError(t, va.Attach(vb, layoutOf(1)))
	assert.Equal(t, uint32(7), va.NextSlot())
	assert.Len(t, va.Slots(), 3)
}

func TestVertexArrayAttachPastLimitIsReported(t *testing.T) {
	dev, _, out := newDevice(t)
	vb, err := NewVertexBuffer(dev, make([]byte, 16))
	require.NoError(t, err)
	va, err := NewVertexArray(dev)
	require.NoError(t, err)

	err = va.AttachAt(vb, layoutOf(1), gputest.MaxVertexAttribs)
	var glErr *gpu.Error
	require.ErrorAs(t, err, &glErr)
	assert.Equal(t, gpu.InvalidValue, glErr.Code)
	assert.Contains(t, out.String(), "glEnableVertexAttribArray")
	assert.Contains(t, glErr.Func, "AttachAt")
}

func TestVertexArrayIndexBuffer(t *testing.T) {
	dev, fake, _ := newDevice(t)
	va, err := NewVertexArray(dev)
	require.NoError(t, err)
	ib, err := NewIndexBuffer(dev, []uint32{0, 1, 2, 2, 3, 0}, 6)
	require.NoError(t, err)

	require.NoError(t, va.SetIndexBuffer(ib))
	assert.Same(t, ib, va.IndexBuffer())
	assert.Equal(t, ib.ID(), fake.Array(va.ID()).ElementBuffer)

	require.NoError(t, va.Unbind())
	require.NoError(t, va.Bind())
	assert.Equal(t, ib.ID(), fake.BoundBuffer(gpu.ElementArrayBuffer))
}

func TestVertexArrayDestroyKeepsBuffers(t *testing.T) {
	dev, fake, _ := newDevice(t)
	vb, err := NewVertexBuffer(dev, Bytes(quad))
	require.NoError(t, err)
	va, err := NewVertexArray(dev)
	require.NoError(t, err)
	require.NoError(t, va.Attach(vb, layoutOf(2)))
	id := va.ID()

	va.Destroy()
	va.Destroy()
	assert.Nil(t, fake.Array(id))
	assert.Equal(t, 1, fake.Released[id])
	assert.Zero(t, fake.BoundArray())
	assert.NotNil(t, fake.BufferObject(vb.ID()))
}
