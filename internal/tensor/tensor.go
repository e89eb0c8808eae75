package tensor

import "fmt"

// Tensor is the typed, backend-bound tensor handed to user code.
//
// Type parameters:
//   - T: element type (DType constraint)
//   - B: compute backend
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{3, 4}, backend)
//	y := x.Add(x)
type Tensor[T DType, B Backend] struct {
	raw          *RawTensor
	backend      B
	grad         *Tensor[T, B]
	requiresGrad bool
}

// New wraps a RawTensor in a typed Tensor.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return &Tensor[T, B]{raw: raw, backend: b}
}

// FromSlice builds a tensor by copying data into fresh memory.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v needs %d elements, got %d", shape, shape.NumElements(), len(data))
	}
	raw, err := NewRaw(shape, TypeOf[T](), b.Device())
	if err != nil {
		return nil, err
	}
	t := New[T, B](raw, b)
	copy(t.Data(), data)
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor[T, B]) Shape() Shape { return t.raw.Shape() }

// DType returns the runtime element type.
func (t *Tensor[T, B]) DType() DataType { return t.raw.DType() }

// Device returns the device the tensor lives on.
func (t *Tensor[T, B]) Device() Device { return t.raw.Device() }

// NumElements returns the total element count.
func (t *Tensor[T, B]) NumElements() int { return t.raw.NumElements() }

// Raw exposes the underlying RawTensor for backend-level code.
func (t *Tensor[T, B]) Raw() *RawTensor { return t.raw }

// Backend returns the compute backend bound to this tensor.
func (t *Tensor[T, B]) Backend() B { return t.backend }

// Grad returns the gradient tensor, or nil before any backward pass.
func (t *Tensor[T, B]) Grad() *Tensor[T, B] { return t.grad }

// SetGrad attaches a gradient tensor.
func (t *Tensor[T, B]) SetGrad(grad *Tensor[T, B]) { t.grad = grad }

// RequireGrad marks the tensor for gradient tracking and returns it for
// chaining.
func (t *Tensor[T, B]) RequireGrad() *Tensor[T, B] {
	t.requiresGrad = true
	return t
}

// RequiresGrad reports whether gradients are tracked for this tensor.
func (t *Tensor[T, B]) RequiresGrad() bool { return t.requiresGrad }

// Detach returns a tensor sharing the same data with gradient tracking
// stripped, stopping gradient flow at this point.
func (t *Tensor[T, B]) Detach() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.raw, backend: t.backend}
}

// Data returns a typed view of the underlying memory. Writes through the
// slice modify the tensor.
func (t *Tensor[T, B]) Data() []T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(t.raw.AsFloat32()).([]T)
	case float64:
		return any(t.raw.AsFloat64()).([]T)
	case int32:
		return any(t.raw.AsInt32()).([]T)
	case int64:
		return any(t.raw.AsInt64()).([]T)
	case uint8:
		return any(t.raw.AsUint8()).([]T)
	default:
		panic("unsupported element type")
	}
}

// Item returns the value of a single-element tensor.
func (t *Tensor[T, B]) Item() T {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("Item() requires a single-element tensor, got shape %v", t.Shape()))
	}
	return t.Data()[0]
}

// At returns the element at the given multi-dimensional indices.
func (t *Tensor[T, B]) At(indices ...int) T {
	return t.Data()[t.flatIndex(indices)]
}

// Set writes the element at the given multi-dimensional indices.
func (t *Tensor[T, B]) Set(value T, indices ...int) {
	t.Data()[t.flatIndex(indices)] = value
}

func (t *Tensor[T, B]) flatIndex(indices []int) int {
	shape := t.Shape()
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(shape), len(indices)))
	}
	offset := 0
	strides := t.raw.Strides()
	for i, idx := range indices {
		if idx < 0 || idx >= shape[i] {
			panic(fmt.Sprintf("index %d out of range for dimension %d (size %d)", idx, i, shape[i]))
		}
		offset += idx * strides[i]
	}
	return offset
}

// Clone returns a deep, gradient-free copy.
func (t *Tensor[T, B]) Clone() *Tensor[T, B] {
	raw, err := NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(err)
	}
	copy(raw.Bytes(), t.raw.Bytes())
	return New[T, B](raw, t.backend)
}

// String describes the tensor without dumping its contents.
func (t *Tensor[T, B]) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", t.DType(), t.Shape(), t.Device())
}
