package tensor

import "fmt"

// Device identifies where a tensor's buffer lives and which backend may
// operate on it. Only CPU is backed by a compute implementation in this
// repository; CUDA exists so placement requests can be rejected with a
// useful error instead of a panic.
type Device int

// Known devices.
const (
	CPU Device = iota
	CUDA
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "cpu"
	case CUDA:
		return "cuda"
	default:
		return "unknown"
	}
}

// Available reports whether tensors can actually be allocated on d.
func (d Device) Available() bool {
	return d == CPU
}

// ParseDevice converts a device name ("cpu", "cuda") to a Device.
func ParseDevice(name string) (Device, error) {
	switch name {
	case "cpu":
		return CPU, nil
	case "cuda":
		return CUDA, nil
	default:
		return CPU, fmt.Errorf("unknown device %q", name)
	}
}
