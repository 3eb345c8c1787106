package buffers

import (
	"fmt"

	"github.com/richinsley/goquad/gpu"
)

// Type is a vertex attribute component type.
type Type uint8

const (
	Float32 Type = iota
	Uint32
	Uint8
	Int8
	Int16
	Uint16
	Int32
	HalfFloat
)

var typeTable = [...]struct {
	name string
	size int32
	gl   gpu.Enum
}{
	Float32:   {"float32", 4, gpu.Float},
	Uint32:    {"uint32", 4, gpu.UnsignedInt},
	Uint8:     {"uint8", 1, gpu.UnsignedByte},
	Int8:      {"int8", 1, gpu.Byte},
	Int16:     {"int16", 2, gpu.Short},
	Uint16:    {"uint16", 2, gpu.UnsignedShort},
	Int32:     {"int32", 4, gpu.Int},
	HalfFloat: {"half", 2, gpu.HalfFloat},
}

func (t Type) valid() bool { return int(t) < len(typeTable) }

// Size returns the byte size of one component of type t.
func (t Type) Size() int32 {
	if !t.valid() {
		panic(fmt.Sprintf("buffers: unknown attribute type %d", t))
	}
	return typeTable[t].size
}

// GLType returns the OpenGL enum for t.
func (t Type) GLType() gpu.Enum {
	if !t.valid() {
		panic(fmt.Sprintf("buffers: unknown attribute type %d", t))
	}
	return typeTable[t].gl
}

// IsFloat reports whether t is a floating point type.
func (t Type) IsFloat() bool { return t == Float32 || t == HalfFloat }

func (t Type) String() string {
	if !t.valid() {
		return fmt.Sprintf("Type(%d)", t)
	}
	return typeTable[t].name
}

// Attribute describes one per-vertex channel.
type Attribute struct {
	Count      int32
	Type       Type
	Normalized bool
}

// Size returns the attribute's byte size within one vertex.
func (a Attribute) Size() int32 { return a.Count * a.Type.Size() }

// Layout is an append-only list of attributes describing how to decode the
// bytes of one vertex. Entry order defines byte offsets.
type Layout struct {
	elements []Attribute
	stride   int32
}

// Push appends an attribute with count components of typ, not normalized.
func (l *Layout) Push(count int32, typ Type) {
	l.PushNormalized(count, typ, false)
}

// PushNormalized appends an attribute. Normalization only applies to integer
// types; floats are already in range and are never normalized.
func (l *Layout) PushNormalized(count int32, typ Type, normalized bool) {
	if count < 1 || count > 4 {
		panic(fmt.Sprintf("buffers: attribute component count %d outside 1..4", count))
	}
	if typ.IsFloat() {
		normalized = false
	}
	a := Attribute{Count: count, Type: typ, Normalized: normalized}
	l.elements = append(l.elements, a)
	l.stride += a.Size()
}

func (l *Layout) PushFloat32(count int32) { l.Push(count, Float32) }
func (l *Layout) PushUint32(count int32)  { l.Push(count, Uint32) }
func (l *Layout) PushUint8(count int32)   { l.Push(count, Uint8) }

// Elements returns a copy of the attributes in insertion order.
func (l *Layout) Elements() []Attribute {
	e := make([]Attribute, len(l.elements))
	copy(e, l.elements)
	return e
}

// Len returns the number of attributes.
func (l *Layout) Len() int { return len(l.elements) }

// Stride returns the byte size of one complete vertex.
func (l *Layout) Stride() int32 { return l.stride }

// Offset returns the byte offset of attribute i within a vertex.
func (l *Layout) Offset(i int) int32 {
	if i < 0 || i > len(l.elements) {
		panic(fmt.Sprintf("buffers: attribute index %d outside 0..%d", i, len(l.elements)))
	}
	var off int32
	for _, a := range l.elements[:i] {
		off += a.Size()
	}
	return off
}
