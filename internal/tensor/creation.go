package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, TypeOf[T](), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor with every element set to value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Rand creates a float tensor with values drawn uniformly from [0, 1).
// Uses math/rand: reproducibility via rand.Seed matters more here than
// cryptographic quality.
func Rand[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	switch data := any(t.Data()).(type) {
	case []float32:
		for i := range data {
			data[i] = rand.Float32()
		}
	case []float64:
		for i := range data {
			data[i] = rand.Float64()
		}
	default:
		panic("Rand supports float32 and float64 only")
	}
	return t
}

// Randn creates a float tensor with values drawn from the standard normal
// distribution, generated with the Box-Muller transform.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	switch data := any(t.Data()).(type) {
	case []float32:
		fillNormal(func(i int, v float64) { data[i] = float32(v) }, len(data))
	case []float64:
		fillNormal(func(i int, v float64) { data[i] = v }, len(data))
	default:
		panic("Randn supports float32 and float64 only")
	}
	return t
}

func fillNormal(set func(i int, v float64), n int) {
	for i := 0; i < n; i += 2 {
		u1, u2 := rand.Float64(), rand.Float64()
		r := math.Sqrt(-2.0 * math.Log(u1))
		set(i, r*math.Cos(2.0*math.Pi*u2))
		if i+1 < n {
			set(i+1, r*math.Sin(2.0*math.Pi*u2))
		}
	}
}

// Arange creates a 1D tensor with consecutive values in [start, end).
func Arange[T DType, B Backend](start, end T, b B) *Tensor[T, B] {
	n := int(float64(end) - float64(start))
	if n <= 0 {
		panic("Arange: end must be greater than start")
	}
	t := Zeros[T, B](Shape{n}, b)
	data := t.Data()
	for i := range data {
		data[i] = start + T(i)
	}
	return t
}

// Eye creates an n-by-n identity matrix.
func Eye[T DType, B Backend](n int, b B) *Tensor[T, B] {
	t := Zeros[T, B](Shape{n, n}, b)
	data := t.Data()
	for i := 0; i < n; i++ {
		data[i*n+i] = 1
	}
	return t
}
