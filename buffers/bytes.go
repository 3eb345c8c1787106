package buffers

import "unsafe"

// Scalar is an element type that can be uploaded as-is.
type Scalar interface {
	~float32 | ~uint32 | ~int32 | ~uint16 | ~int16 | ~uint8 | ~int8
}

// Bytes reinterprets v as its in-memory bytes without copying.
func Bytes[T Scalar](v []T) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*int(unsafe.Sizeof(v[0])))
}
