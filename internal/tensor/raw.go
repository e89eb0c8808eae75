package tensor

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// buffer is a reference-counted byte slice shared between RawTensors.
// Reference counting enables copy-on-write clones and lets backends apply
// in-place optimizations when a buffer has exactly one owner.
type buffer struct {
	data []byte
	refs atomic.Int32
}

func newBuffer(size int) *buffer {
	b := &buffer{data: make([]byte, size)}
	b.refs.Store(1)
	return b
}

func (b *buffer) retain()  { b.refs.Add(1) }
func (b *buffer) release() { b.refs.Add(-1) }

// RawTensor is the untyped tensor representation shared by all backends:
// a dtype-tagged byte buffer plus shape, row-major strides and a device tag.
type RawTensor struct {
	buf    *buffer
	shape  Shape
	stride []int
	dtype  DataType
	device Device
}

// NewRaw allocates a zero-filled RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if !device.Available() {
		return nil, fmt.Errorf("device %s is not available", device)
	}

	return &RawTensor{
		buf:    newBuffer(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape { return r.shape }

// Strides returns the tensor's row-major strides.
func (r *RawTensor) Strides() []int { return r.stride }

// DType returns the element type tag.
func (r *RawTensor) DType() DataType { return r.dtype }

// Device returns the device the buffer lives on.
func (r *RawTensor) Device() Device { return r.device }

// NumElements returns the total element count.
func (r *RawTensor) NumElements() int { return r.shape.NumElements() }

// ByteSize returns the buffer size in bytes.
func (r *RawTensor) ByteSize() int { return r.NumElements() * r.dtype.Size() }

// Bytes exposes the raw backing bytes.
func (r *RawTensor) Bytes() []byte { return r.buf.data }

// AsFloat32 reinterprets the buffer as []float32. Panics on dtype mismatch.
func (r *RawTensor) AsFloat32() []float32 {
	r.mustBe(Float32)
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.buf.data[0])), r.NumElements())
}

// AsFloat64 reinterprets the buffer as []float64. Panics on dtype mismatch.
func (r *RawTensor) AsFloat64() []float64 {
	r.mustBe(Float64)
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.buf.data[0])), r.NumElements())
}

// AsInt32 reinterprets the buffer as []int32. Panics on dtype mismatch.
func (r *RawTensor) AsInt32() []int32 {
	r.mustBe(Int32)
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.buf.data[0])), r.NumElements())
}

// AsInt64 reinterprets the buffer as []int64. Panics on dtype mismatch.
func (r *RawTensor) AsInt64() []int64 {
	r.mustBe(Int64)
	return unsafe.Slice((*int64)(unsafe.Pointer(&r.buf.data[0])), r.NumElements())
}

// AsUint8 reinterprets the buffer as []uint8. Panics on dtype mismatch.
func (r *RawTensor) AsUint8() []uint8 {
	r.mustBe(Uint8)
	return r.buf.data
}

func (r *RawTensor) mustBe(dt DataType) {
	if r.dtype != dt {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, dt))
	}
}

// Clone returns a shallow copy sharing the same buffer. The clone only
// bumps the reference count; backends copy lazily when a write is needed.
func (r *RawTensor) Clone() *RawTensor {
	r.buf.retain()
	return &RawTensor{
		buf:    r.buf,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
}

// IsUnique reports whether this tensor is the buffer's only owner, in which
// case a backend may overwrite it in place.
func (r *RawTensor) IsUnique() bool {
	return r.buf.refs.Load() == 1
}

// ForceNonUnique pins the buffer so IsUnique reports false until the
// returned release function runs. The autodiff layer uses this to keep
// recorded inputs intact: an in-place optimization during the forward pass
// would corrupt the tape.
//
//	defer x.ForceNonUnique()()
func (r *RawTensor) ForceNonUnique() func() {
	r.buf.retain()
	return r.buf.release
}
