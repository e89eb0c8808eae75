package dataset

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abacus-ml/abacus/internal/backend/cpu"
)

// writeIDX builds a synthetic IDX image/label pair: count 2x2 images where
// image i is filled with pixel value i*10, labeled i%10.
func writeIDX(t *testing.T, dir string, count int, gzipped bool) (imgPath, labPath string) {
	t.Helper()

	var img bytes.Buffer
	binary.Write(&img, binary.BigEndian, uint32(magicImages))
	binary.Write(&img, binary.BigEndian, uint32(count))
	binary.Write(&img, binary.BigEndian, uint32(2))
	binary.Write(&img, binary.BigEndian, uint32(2))
	for i := 0; i < count; i++ {
		for p := 0; p < 4; p++ {
			img.WriteByte(uint8(i * 10))
		}
	}

	var lab bytes.Buffer
	binary.Write(&lab, binary.BigEndian, uint32(magicLabels))
	binary.Write(&lab, binary.BigEndian, uint32(count))
	for i := 0; i < count; i++ {
		lab.WriteByte(uint8(i % 10))
	}

	suffix := ""
	if gzipped {
		suffix = ".gz"
	}
	imgPath = filepath.Join(dir, "images-idx3-ubyte"+suffix)
	labPath = filepath.Join(dir, "labels-idx1-ubyte"+suffix)
	writeFile(t, imgPath, img.Bytes(), gzipped)
	writeFile(t, labPath, lab.Bytes(), gzipped)
	return imgPath, labPath
}

func writeFile(t *testing.T, path string, data []byte, gzipped bool) {
	t.Helper()
	if gzipped {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, err := gz.Write(data)
		require.NoError(t, err)
		require.NoError(t, gz.Close())
		data = buf.Bytes()
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestReadPlainIDX(t *testing.T) {
	imgPath, labPath := writeIDX(t, t.TempDir(), 3, false)

	data, err := Read(imgPath, labPath)
	require.NoError(t, err)
	assert.Equal(t, 3, data.Count)
	assert.Equal(t, 2, data.Rows)
	assert.Equal(t, 2, data.Cols)
	assert.Equal(t, []uint8{0, 1, 2}, data.Labels)
	assert.Equal(t, uint8(10), data.Images[4], "second image pixels")
}

func TestReadGzippedIDX(t *testing.T) {
	imgPath, labPath := writeIDX(t, t.TempDir(), 2, true)

	data, err := Read(imgPath, labPath)
	require.NoError(t, err)
	assert.Equal(t, 2, data.Count)
	assert.Equal(t, uint8(10), data.Images[7])
}

func TestReadBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad-idx3-ubyte")
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(0xDEADBEEF))
	binary.Write(&buf, binary.BigEndian, uint32(1))
	binary.Write(&buf, binary.BigEndian, uint32(2))
	binary.Write(&buf, binary.BigEndian, uint32(2))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, _, _, _, err := ReadImages(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic")
}

func TestReadCountMismatch(t *testing.T) {
	dir := t.TempDir()
	imgPath, _ := writeIDX(t, dir, 3, false)
	otherDir := t.TempDir()
	_, labPath := writeIDX(t, otherDir, 2, false)

	_, err := Read(imgPath, labPath)
	assert.Error(t, err)
}

func TestLoaderBatches(t *testing.T) {
	imgPath, labPath := writeIDX(t, t.TempDir(), 5, false)
	data, err := Read(imgPath, labPath)
	require.NoError(t, err)

	loader, err := NewLoader(data, cpu.New(), 2, false, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, loader.NumBatches())

	images, labels, ok := loader.Next()
	require.True(t, ok)
	assert.Equal(t, 2, images.Shape()[0])
	assert.Equal(t, 4, images.Shape()[1])
	assert.Equal(t, []int32{0, 1}, labels.Data())
	// Pixel 10 normalizes to 10/255.
	assert.InDelta(t, 10.0/255.0, float64(images.Data()[4]), 1e-6)

	_, _, ok = loader.Next()
	require.True(t, ok)

	// Final short batch.
	images, labels, ok = loader.Next()
	require.True(t, ok)
	assert.Equal(t, 1, images.Shape()[0])
	assert.Equal(t, []int32{4}, labels.Data())

	_, _, ok = loader.Next()
	assert.False(t, ok)
}

func TestLoaderShuffleDeterministic(t *testing.T) {
	imgPath, labPath := writeIDX(t, t.TempDir(), 8, false)
	data, err := Read(imgPath, labPath)
	require.NoError(t, err)

	collect := func(seed int64) []int32 {
		loader, err := NewLoader(data, cpu.New(), 8, true, seed)
		require.NoError(t, err)
		_, labels, ok := loader.Next()
		require.True(t, ok)
		return labels.Data()
	}

	assert.Equal(t, collect(42), collect(42), "same seed, same order")
	assert.NotEqual(t, collect(42), collect(43), "different seed, different order")
}

func TestLoaderResetReshuffles(t *testing.T) {
	imgPath, labPath := writeIDX(t, t.TempDir(), 8, false)
	data, err := Read(imgPath, labPath)
	require.NoError(t, err)

	loader, err := NewLoader(data, cpu.New(), 8, true, 7)
	require.NoError(t, err)

	_, first, _ := loader.Next()
	loader.Reset()
	_, second, _ := loader.Next()
	assert.NotEqual(t, first.Data(), second.Data(), "epochs should see different orders")
}

func TestSplit(t *testing.T) {
	imgPath, labPath := writeIDX(t, t.TempDir(), 10, false)
	data, err := Read(imgPath, labPath)
	require.NoError(t, err)

	train, val, err := Split(data, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, train.Count)
	assert.Equal(t, 2, val.Count)
	assert.Equal(t, []uint8{8, 9}, val.Labels)

	_, _, err = Split(data, 10)
	assert.Error(t, err)
}

func TestDownloadRetriesAndSkipsExisting(t *testing.T) {
	failures := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Fail each file once, then serve it.
		if failures[r.URL.Path] == 0 {
			failures[r.URL.Path]++
			http.Error(w, "flaky", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("payload-" + r.URL.Path))
	}))
	defer srv.Close()

	dir := t.TempDir()
	// Pre-seed one file; the server must never be asked for it.
	pre := filepath.Join(dir, TrainImagesFile)
	require.NoError(t, os.WriteFile(pre, []byte("existing"), 0o644))

	require.NoError(t, Download(context.Background(), dir, srv.URL+"/"))

	content, err := os.ReadFile(pre)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(content), "existing file must not be replaced")

	got, err := os.ReadFile(filepath.Join(dir, TestLabelsFile))
	require.NoError(t, err)
	assert.Equal(t, "payload-/"+TestLabelsFile, string(got))
	assert.NotContains(t, failures, "/"+TrainImagesFile)
}

func TestDownloadPermanentFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	err := Download(context.Background(), t.TempDir(), srv.URL+"/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
