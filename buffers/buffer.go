// Package buffers wraps OpenGL buffer and vertex array objects and the vertex
// layouts that tell the pipeline how to decode a buffer's bytes.
package buffers

import (
	"errors"
	"fmt"

	"github.com/richinsley/goquad/gpu"
)

// ErrNoName is returned when the driver hands back the reserved name 0.
var ErrNoName = errors.New("driver returned object name 0")

// Buffer owns one GPU buffer object. It must not be copied; Destroy releases
// it once and later calls are no-ops.
type Buffer struct {
	dev    *gpu.Device
	id     uint32
	target gpu.Enum
	size   int
}

// NewBuffer creates a buffer for target (gpu.ArrayBuffer or
// gpu.ElementArrayBuffer) and uploads data with a static usage hint. The
// upload size is always len(data). A failed upload is reported by the device
// and leaves the buffer empty with Size 0.
func NewBuffer(dev *gpu.Device, target gpu.Enum, data []byte) (*Buffer, error) {
	id, err := dev.GenBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to generate buffer: %w", err)
	}
	if id == 0 {
		return nil, fmt.Errorf("failed to generate buffer: %w", ErrNoName)
	}
	b := &Buffer{dev: dev, id: id, target: target}
	if dev.BindBuffer(target, id) == nil && dev.BufferData(target, data, gpu.StaticDraw) == nil {
		b.size = len(data)
	}
	return b, nil
}

// NewVertexBuffer creates an ARRAY_BUFFER holding data.
func NewVertexBuffer(dev *gpu.Device, data []byte) (*Buffer, error) {
	return NewBuffer(dev, gpu.ArrayBuffer, data)
}

// ID returns the GPU object name, or 0 after Destroy.
func (b *Buffer) ID() uint32 { return b.id }

// Target returns the binding category chosen at construction.
func (b *Buffer) Target() gpu.Enum { return b.target }

// Size returns the number of bytes uploaded.
func (b *Buffer) Size() int { return b.size }

// Bind makes b the active buffer of its category.
func (b *Buffer) Bind() error {
	return b.dev.BindBuffer(b.target, b.id)
}

// Unbind resets the active buffer of b's category to none.
func (b *Buffer) Unbind() error {
	return b.dev.BindBuffer(b.target, 0)
}

// Read binds b and reads its contents back from the driver.
func (b *Buffer) Read() ([]byte, error) {
	data := make([]byte, b.size)
	if err := b.Bind(); err != nil {
		return nil, err
	}
	if err := b.dev.GetBufferSubData(b.target, 0, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Destroy releases the GPU allocation.
func (b *Buffer) Destroy() {
	if b.id == 0 {
		return
	}
	_ = b.dev.DeleteBuffer(b.id)
	b.id = 0
}
