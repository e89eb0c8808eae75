package tensor

// Backend is the compute interface every device implementation satisfies.
// All operations work on RawTensor so the typed Tensor wrapper stays thin.
//
// Shape and dtype violations are programmer errors and panic; only
// allocation failures surface as errors (via NewRaw inside implementations).
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul multiplies 2D tensors: (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Element-wise scalar operations.
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// Element-wise math.
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor

	// Activations.
	ReLU(x *RawTensor) *RawTensor
	Softmax(x *RawTensor, dim int) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	Argmax(x *RawTensor, dim int) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Narrow slices length elements starting at start along dim,
	// copying into a fresh tensor.
	Narrow(t *RawTensor, dim, start, length int) *RawTensor

	// Cast converts to another element type.
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}

// CrossEntropyBackend is implemented by backends that fuse softmax and
// negative log-likelihood into one differentiable operation.
type CrossEntropyBackend interface {
	// CrossEntropy returns the scalar mean loss for logits
	// [batch, classes] against int32 class indices [batch].
	CrossEntropy(logits, targets *RawTensor) *RawTensor
}
