package vkgrid

import (
	"unsafe"
)

// SliceBytes views the backing array of s as raw bytes. T must be a plain value type with
// no pointers, the layout seen by shaders is Go's in-memory layout.
func SliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	size := len(s) * int(unsafe.Sizeof(s[0]))
	return ToBytes(unsafe.Pointer(&s[0]), size)
}

// ValueBytes views a single value as raw bytes.
func ValueBytes[T any](v *T) []byte {
	return ToBytes(unsafe.Pointer(v), int(unsafe.Sizeof(*v)))
}
