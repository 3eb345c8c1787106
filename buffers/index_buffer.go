package buffers

import (
	"fmt"
	"unsafe"

	"github.com/richinsley/goquad/gpu"
)

// IndexSize is the byte size of one element index. It must match
// GL_UNSIGNED_INT bit for bit.
const IndexSize = 4

// IndexBuffer is an ELEMENT_ARRAY_BUFFER of 32-bit unsigned indices.
type IndexBuffer struct {
	*Buffer
	count int
}

// NewIndexBuffer uploads the first count entries of indices. count may not
// exceed len(indices).
func NewIndexBuffer(dev *gpu.Device, indices []uint32, count int) (*IndexBuffer, error) {
	// Compile-time constant: uint32 is always 4 bytes, so this never fires.
	if unsafe.Sizeof(uint32(0)) != IndexSize {
		panic("buffers: index element is not 4 bytes")
	}
	if count < 0 || count > len(indices) {
		return nil, fmt.Errorf("index count %d out of range for %d indices", count, len(indices))
	}
	b, err := NewBuffer(dev, gpu.ElementArrayBuffer, Bytes(indices[:count]))
	if err != nil {
		return nil, err
	}
	return &IndexBuffer{Buffer: b, count: count}, nil
}

// Count returns the number of indices, for use as a draw call's element count.
func (ib *IndexBuffer) Count() int { return ib.count }

// Type returns the index element type for DrawElements.
func (ib *IndexBuffer) Type() gpu.Enum { return gpu.UnsignedInt }
