// Package cpu implements the pure-Go CPU compute backend.
package cpu

import (
	"fmt"

	"github.com/abacus-ml/abacus/internal/parallel"
	"github.com/abacus-ml/abacus/internal/tensor"
)

// Backend implements tensor.Backend on the host CPU.
//
// Element-wise kernels take an in-place fast path when the left operand is
// the sole owner of its buffer; matmul is cache-blocked and parallelized
// across row bands.
type Backend struct {
	device tensor.Device
	par    parallel.Config
}

var (
	_ tensor.Backend             = (*Backend)(nil)
	_ tensor.CrossEntropyBackend = (*Backend)(nil)
)

// New creates a CPU backend with default parallelism.
func New() *Backend {
	return &Backend{
		device: tensor.CPU,
		par:    parallel.DefaultConfig(),
	}
}

// Name returns the backend name.
func (c *Backend) Name() string { return "cpu" }

// Device returns tensor.CPU.
func (c *Backend) Device() tensor.Device { return c.device }

// binOp selects an element-wise binary kernel.
type binOp int

const (
	opAdd binOp = iota
	opSub
	opMul
	opDiv
)

func (op binOp) String() string {
	return [...]string{"add", "sub", "mul", "div"}[op]
}

// Add performs element-wise addition with broadcasting.
func (c *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor { return c.binary(opAdd, a, b) }

// Sub performs element-wise subtraction with broadcasting.
func (c *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor { return c.binary(opSub, a, b) }

// Mul performs element-wise multiplication with broadcasting.
func (c *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor { return c.binary(opMul, a, b) }

// Div performs element-wise division with broadcasting.
func (c *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor { return c.binary(opDiv, a, b) }

func (c *Backend) binary(op binOp, a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}

	outShape, expand, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	if !expand {
		// Same shape: overwrite a when nothing else references its buffer.
		if a.IsUnique() {
			applyBinary(op, a, a, b)
			return a
		}
		out := mustRaw(outShape, a.DType(), c.device)
		applyBinary(op, out, a, b)
		return out
	}

	out := mustRaw(outShape, a.DType(), c.device)
	applyBinaryBroadcast(op, out, a, b)
	return out
}

func mustRaw(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	raw, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("cpu: allocation failed: %v", err))
	}
	return raw
}

func applyBinary(op binOp, dst, a, b *tensor.RawTensor) {
	switch a.DType() {
	case tensor.Float32:
		binaryKernel(op, dst.AsFloat32(), a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		binaryKernel(op, dst.AsFloat64(), a.AsFloat64(), b.AsFloat64())
	case tensor.Int32:
		binaryKernel(op, dst.AsInt32(), a.AsInt32(), b.AsInt32())
	case tensor.Int64:
		binaryKernel(op, dst.AsInt64(), a.AsInt64(), b.AsInt64())
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}
}

func applyBinaryBroadcast(op binOp, dst, a, b *tensor.RawTensor) {
	switch a.DType() {
	case tensor.Float32:
		broadcastKernel(op, dst.AsFloat32(), a.AsFloat32(), b.AsFloat32(), dst.Shape(), a.Shape(), b.Shape())
	case tensor.Float64:
		broadcastKernel(op, dst.AsFloat64(), a.AsFloat64(), b.AsFloat64(), dst.Shape(), a.Shape(), b.Shape())
	case tensor.Int32:
		broadcastKernel(op, dst.AsInt32(), a.AsInt32(), b.AsInt32(), dst.Shape(), a.Shape(), b.Shape())
	case tensor.Int64:
		broadcastKernel(op, dst.AsInt64(), a.AsInt64(), b.AsInt64(), dst.Shape(), a.Shape(), b.Shape())
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}
}
