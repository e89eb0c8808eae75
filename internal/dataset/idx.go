// Package dataset loads MNIST from IDX files, downloads missing archives
// and serves shuffled mini-batches as tensors.
package dataset

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// IDX magic numbers: dtype byte 0x08 (uint8) and dimension count.
const (
	magicImages = 0x00000803 // 3 dimensions: count, rows, cols
	magicLabels = 0x00000801 // 1 dimension: count
)

// MNIST holds one split of the dataset as flat uint8 data.
type MNIST struct {
	Images []uint8 // count * rows * cols pixels
	Labels []uint8 // count class indices, 0-9
	Count  int
	Rows   int
	Cols   int
}

// ReadImages parses an IDX3 image file. Gzipped files are handled
// transparently based on the .gz suffix.
func ReadImages(path string) (images []uint8, count, rows, cols int, err error) {
	r, closeFn, err := openMaybeGzip(path)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	defer closeFn()

	var header [4]uint32
	for i := range header {
		if err := binary.Read(r, binary.BigEndian, &header[i]); err != nil {
			return nil, 0, 0, 0, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if header[0] != magicImages {
		return nil, 0, 0, 0, fmt.Errorf("%s: bad image magic 0x%08X", path, header[0])
	}

	count, rows, cols = int(header[1]), int(header[2]), int(header[3])
	images = make([]uint8, count*rows*cols)
	if _, err := io.ReadFull(r, images); err != nil {
		return nil, 0, 0, 0, fmt.Errorf("read %s pixels: %w", path, err)
	}
	return images, count, rows, cols, nil
}

// ReadLabels parses an IDX1 label file.
func ReadLabels(path string) ([]uint8, error) {
	r, closeFn, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var magic, count uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if magic != magicLabels {
		return nil, fmt.Errorf("%s: bad label magic 0x%08X", path, magic)
	}
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	labels := make([]uint8, count)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("read %s labels: %w", path, err)
	}
	return labels, nil
}

// Read loads a full split from an image file and its matching label file.
func Read(imagePath, labelPath string) (*MNIST, error) {
	images, count, rows, cols, err := ReadImages(imagePath)
	if err != nil {
		return nil, err
	}
	labels, err := ReadLabels(labelPath)
	if err != nil {
		return nil, err
	}
	if len(labels) != count {
		return nil, fmt.Errorf("%d images but %d labels", count, len(labels))
	}
	for i, l := range labels {
		if l > 9 {
			return nil, fmt.Errorf("label %d out of range at index %d", l, i)
		}
	}
	return &MNIST{Images: images, Labels: labels, Count: count, Rows: rows, Cols: cols}, nil
}

func openMaybeGzip(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, f.Close, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("gzip %s: %w", path, err)
	}
	return gz, func() error {
		gz.Close()
		return f.Close()
	}, nil
}
