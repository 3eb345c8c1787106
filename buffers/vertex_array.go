package buffers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/richinsley/goquad/gpu"
)

// Slot is the configuration applied to one attribute slot.
type Slot struct {
	Index     uint32
	Attribute Attribute
	Stride    int32
	Offset    int32
	Buffer    uint32
}

// VertexArray owns a vertex array object and remembers which attribute
// slots it has configured.
type VertexArray struct {
	dev     *gpu.Device
	id      uint32
	slots   map[uint32]Slot
	cursor  uint32
	indices *IndexBuffer
}

// NewVertexArray generates a vertex array with no configured slots.
func NewVertexArray(dev *gpu.Device) (*VertexArray, error) {
	id, err := dev.GenVertexArray()
	if err != nil {
		return nil, fmt.Errorf("failed to generate vertex array: %w", err)
	}
	if id == 0 {
		return nil, fmt.Errorf("failed to generate vertex array: %w", ErrNoName)
	}
	return &VertexArray{dev: dev, id: id, slots: map[uint32]Slot{}}, nil
}

// ID returns the GPU object name, or 0 after Destroy.
func (va *VertexArray) ID() uint32 { return va.id }

// Attach binds vb's bytes to slots 0..layout.Len()-1. Every call starts at
// slot 0, so attaching a second buffer overwrites the first one's slots
// wherever the layouts overlap. Use Append or AttachAt to feed one array
// from several buffers.
func (va *VertexArray) Attach(vb *Buffer, layout *Layout) error {
	return va.AttachAt(vb, layout, 0)
}

// Append attaches vb starting at the first slot past every slot configured
// so far.
func (va *VertexArray) Append(vb *Buffer, layout *Layout) error {
	return va.AttachAt(vb, layout, va.cursor)
}

// AttachAt binds the array, binds vb, then enables and configures slot
// first+i for each layout entry i. Offsets restart at 0 for each call.
// Driver errors are collected and returned; configuration continues past them.
func (va *VertexArray) AttachAt(vb *Buffer, layout *Layout, first uint32) error {
	var errs []error
	if err := va.Bind(); err != nil {
		errs = append(errs, err)
	}
	if err := vb.Bind(); err != nil {
		errs = append(errs, err)
	}

	stride := layout.Stride()
	var offset int32
	for i, a := range layout.elements {
		index := first + uint32(i)
		if err := va.dev.EnableVertexAttribArray(index); err != nil {
			errs = append(errs, err)
		}
		if err := va.dev.VertexAttribPointer(index, a.Count, a.Type.GLType(), a.Normalized, stride, uintptr(offset)); err != nil {
			errs = append(errs, err)
		}
		va.slots[index] = Slot{Index: index, Attribute: a, Stride: stride, Offset: offset, Buffer: vb.ID()}
		if index+1 > va.cursor {
			va.cursor = index + 1
		}
		offset += a.Size()
	}
	return errors.Join(errs...)
}

// SetIndexBuffer binds ib while the array is bound so the array records it.
func (va *VertexArray) SetIndexBuffer(ib *IndexBuffer) error {
	if err := va.Bind(); err != nil {
		return err
	}
	if err := ib.Bind(); err != nil {
		return err
	}
	va.indices = ib
	return nil
}

// IndexBuffer returns the index buffer recorded by SetIndexBuffer.
func (va *VertexArray) IndexBuffer() *IndexBuffer { return va.indices }

// Slots returns the configured slots ordered by index.
func (va *VertexArray) Slots() []Slot {
	s := make([]Slot, 0, len(va.slots))
	for _, slot := range va.slots {
		s = append(s, slot)
	}
	sort.Slice(s, func(i, j int) bool { return s[i].Index < s[j].Index })
	return s
}

// NextSlot returns the slot Append would start at.
func (va *VertexArray) NextSlot() uint32 { return va.cursor }

func (va *VertexArray) Bind() error {
	return va.dev.BindVertexArray(va.id)
}

func (va *VertexArray) Unbind() error {
	return va.dev.BindVertexArray(0)
}

// Destroy releases the vertex array object. The attached buffers are not
// owned by the array and stay alive.
func (va *VertexArray) Destroy() {
	if va.id == 0 {
		return
	}
	_ = va.dev.DeleteVertexArray(va.id)
	va.id = 0
}
