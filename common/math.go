package common

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Sqrt2 is used by the shadow filters to widen filter radii to the tile diagonal.
const Sqrt2 float32 = 1.4142136

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// ReinterpretAsFloat returns the float32 whose IEEE-754 bit pattern equals v.
// Shaders recover the integer with bitcast<i32>, so the value itself is meaningless
// as a float.
//
// Parameters:
//   - v: the integer to reinterpret
//
// Returns:
//   - float32: a float carrying v's bits
func ReinterpretAsFloat(v int32) float32 {
	return math.Float32frombits(uint32(v))
}

// ReinterpretUintAsFloat is ReinterpretAsFloat for unsigned masks.
//
// Parameters:
//   - v: the bit pattern to reinterpret
//
// Returns:
//   - float32: a float carrying v's bits
func ReinterpretUintAsFloat(v uint32) float32 {
	return math.Float32frombits(v)
}

// PutVec4 writes v into buf[off:off+16] as four little-endian float32 values.
//
// Parameters:
//   - buf: destination buffer
//   - off: byte offset of the first component
//   - v: the vector to write
//
// Returns:
//   - int: the offset just past the written vector
func PutVec4(buf []byte, off int, v mgl32.Vec4) int {
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[off+i*4:off+i*4+4], math.Float32bits(v[i]))
	}
	return off + 16
}

// PutMat4 writes m into buf[off:off+64] in column-major order, matching WGSL mat4x4<f32>.
//
// Parameters:
//   - buf: destination buffer
//   - off: byte offset of the first element
//   - m: the matrix to write
//
// Returns:
//   - int: the offset just past the written matrix
func PutMat4(buf []byte, off int, m mgl32.Mat4) int {
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[off+i*4:off+i*4+4], math.Float32bits(m[i]))
	}
	return off + 64
}

// StableUp returns a world up vector that is not parallel to forward.
// If forward points nearly straight up or down, the X axis is used instead.
func StableUp(forward mgl32.Vec3) mgl32.Vec3 {
	if absF32(forward.Y()) > 0.99 {
		return mgl32.Vec3{1, 0, 0}
	}
	return mgl32.Vec3{0, 1, 0}
}

// LocalToWorld builds a rigid transform whose third column is the normalized forward
// axis and whose fourth column is the position.
//
// Parameters:
//   - position: world-space origin of the transform
//   - forward: the direction the local +Z axis should face
//
// Returns:
//   - mgl32.Mat4: the local-to-world matrix
func LocalToWorld(position, forward mgl32.Vec3) mgl32.Mat4 {
	f := mgl32.Vec3{0, 0, 1}
	if forward.Len() > 0 {
		f = forward.Normalize()
	}
	right := StableUp(f).Cross(f).Normalize()
	up := f.Cross(right)
	return mgl32.Mat4FromCols(right.Vec4(0), up.Vec4(0), f.Vec4(0), position.Vec4(1))
}

func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
