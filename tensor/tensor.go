// Copyright 2026 The Abacus Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public API for tensor creation and manipulation.
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)
package tensor

import "github.com/abacus-ml/abacus/internal/tensor"

// DType is the constraint for tensor element types.
type DType = tensor.DType

// DataType is the runtime element type tag.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
)

// Device identifies where tensor data lives.
type Device = tensor.Device

// Device constants. Only CPU is backed by a compute backend; CUDA exists so
// device placement errors can name what was asked for.
const (
	CPU  Device = tensor.CPU
	CUDA Device = tensor.CUDA
)

// ParseDevice resolves a device name such as "cpu".
func ParseDevice(name string) (Device, error) { return tensor.ParseDevice(name) }

// Shape holds tensor dimensions, outermost first.
type Shape = tensor.Shape

// BroadcastShapes resolves two shapes under NumPy broadcasting rules.
func BroadcastShapes(a, b Shape) (Shape, bool, error) { return tensor.BroadcastShapes(a, b) }

// Backend is the compute interface every device implementation satisfies.
type Backend = tensor.Backend

// CrossEntropyBackend is the optional fused cross-entropy capability.
type CrossEntropyBackend = tensor.CrossEntropyBackend

// RawTensor is the untyped, backend-independent tensor representation.
type RawTensor = tensor.RawTensor

// Tensor is the typed, backend-bound tensor.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// Creation functions.

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor with every element set to value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Rand creates a float tensor with values drawn uniformly from [0, 1).
func Rand[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Rand[T, B](shape, b)
}

// Randn creates a float tensor with standard normal values.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Randn[T, B](shape, b)
}

// Arange creates a 1D tensor with consecutive values in [start, end).
func Arange[T DType, B Backend](start, end T, b B) *Tensor[T, B] {
	return tensor.Arange[T, B](start, end, b)
}

// Eye creates an n-by-n identity matrix.
func Eye[T DType, B Backend](n int, b B) *Tensor[T, B] {
	return tensor.Eye[T, B](n, b)
}

// FromSlice builds a tensor by copying data into fresh memory.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice[T, B](data, shape, b)
}

// New wraps a RawTensor in a typed Tensor. Low-level; prefer the creation
// functions above.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// NewRaw allocates a zero-filled RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}
