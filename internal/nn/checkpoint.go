package nn

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/abacus-ml/abacus/internal/tensor"
)

// Checkpoint format: a little-endian header followed by one record per
// parameter and a CRC32 (IEEE) footer over everything before it.
//
//	magic  uint32  "ABK1"
//	count  uint32
//	per parameter:
//	  nameLen uint16, name, ndim uint8, dims []uint32, values []float32
//	crc32  uint32
const checkpointMagic = 0x41424B31

// Save writes all module parameters to w.
func Save[B tensor.Backend](w io.Writer, m Module[B]) error {
	crc := crc32.NewIEEE()
	out := io.MultiWriter(w, crc)

	params := m.Parameters()
	if err := writeU32(out, checkpointMagic); err != nil {
		return err
	}
	if err := writeU32(out, uint32(len(params))); err != nil {
		return err
	}

	for _, p := range params {
		name := p.Name()
		if len(name) > 1<<16-1 {
			return fmt.Errorf("checkpoint: parameter name %q too long", name)
		}
		if err := binary.Write(out, binary.LittleEndian, uint16(len(name))); err != nil {
			return err
		}
		if _, err := io.WriteString(out, name); err != nil {
			return err
		}

		shape := p.Tensor().Shape()
		if err := binary.Write(out, binary.LittleEndian, uint8(len(shape))); err != nil {
			return err
		}
		for _, dim := range shape {
			if err := writeU32(out, uint32(dim)); err != nil {
				return err
			}
		}
		if err := binary.Write(out, binary.LittleEndian, p.Data()); err != nil {
			return err
		}
	}

	return writeU32(w, crc.Sum32())
}

// Load restores module parameters from r. The stream must contain the same
// parameters, in the same order and with the same shapes, as the module
// reports; a corrupted stream fails the CRC check before any data is
// accepted into the module.
func Load[B tensor.Backend](r io.Reader, m Module[B]) error {
	params := m.Parameters()

	crc := crc32.NewIEEE()
	in := io.TeeReader(r, crc)

	magic, err := readU32(in)
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	if magic != checkpointMagic {
		return fmt.Errorf("checkpoint: bad magic 0x%08X", magic)
	}
	count, err := readU32(in)
	if err != nil {
		return err
	}
	if int(count) != len(params) {
		return fmt.Errorf("checkpoint: has %d parameters, module has %d", count, len(params))
	}

	// Stage everything, verify the checksum, then commit.
	staged := make([][]float32, len(params))
	for i, p := range params {
		var nameLen uint16
		if err := binary.Read(in, binary.LittleEndian, &nameLen); err != nil {
			return err
		}
		nameBuf := make([]byte, nameLen)
		if _, err := io.ReadFull(in, nameBuf); err != nil {
			return err
		}
		if string(nameBuf) != p.Name() {
			return fmt.Errorf("checkpoint: parameter %d is %q, module expects %q", i, nameBuf, p.Name())
		}

		var ndim uint8
		if err := binary.Read(in, binary.LittleEndian, &ndim); err != nil {
			return err
		}
		shape := make(tensor.Shape, ndim)
		for d := range shape {
			v, err := readU32(in)
			if err != nil {
				return err
			}
			shape[d] = int(v)
		}
		if !shape.Equal(p.Tensor().Shape()) {
			return fmt.Errorf("checkpoint: %s has shape %v, module expects %v", p.Name(), shape, p.Tensor().Shape())
		}

		values := make([]float32, shape.NumElements())
		if err := binary.Read(in, binary.LittleEndian, values); err != nil {
			return err
		}
		staged[i] = values
	}

	sum := crc.Sum32()
	stored, err := readU32(r)
	if err != nil {
		return err
	}
	if stored != sum {
		return fmt.Errorf("checkpoint: CRC mismatch: stored 0x%08X, computed 0x%08X", stored, sum)
	}

	for i, p := range params {
		copy(p.Data(), staged[i])
	}
	return nil
}

// SaveFile writes a checkpoint to path, replacing any existing file.
func SaveFile[B tensor.Backend](path string, m Module[B]) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := Save(w, m); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile restores a checkpoint from path.
func LoadFile[B tensor.Backend](path string, m Module[B]) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Load(bufio.NewReader(f), m)
}

func writeU32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readU32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
