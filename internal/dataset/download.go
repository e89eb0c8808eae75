package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultMirror serves the four classic MNIST archives.
const DefaultMirror = "https://storage.googleapis.com/cvdf-datasets/mnist/"

// Archive file names, shared between the downloader and the loaders.
const (
	TrainImagesFile = "train-images-idx3-ubyte.gz"
	TrainLabelsFile = "train-labels-idx1-ubyte.gz"
	TestImagesFile  = "t10k-images-idx3-ubyte.gz"
	TestLabelsFile  = "t10k-labels-idx1-ubyte.gz"
)

var allFiles = []string{TrainImagesFile, TrainLabelsFile, TestImagesFile, TestLabelsFile}

// Download fetches any MNIST archives missing from dir, retrying transient
// failures with exponential backoff. Files already on disk are left alone.
func Download(ctx context.Context, dir, mirror string) error {
	if mirror == "" {
		mirror = DefaultMirror
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, name := range allFiles {
		dest := filepath.Join(dir, name)
		if _, err := os.Stat(dest); err == nil {
			continue
		}

		policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
		fetch := func() error {
			return fetchFile(ctx, mirror+name, dest)
		}
		if err := backoff.Retry(fetch, policy); err != nil {
			return fmt.Errorf("download %s: %w", name, err)
		}
	}
	return nil
}

func fetchFile(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	default:
		// 4xx will not get better by retrying.
		return backoff.Permanent(fmt.Errorf("GET %s: %s", url, resp.Status))
	}

	// Write to a temp file first so an interrupted download never leaves a
	// truncated archive that later passes the on-disk check.
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp*")
	if err != nil {
		return backoff.Permanent(err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// Load reads a split ("train" or "test") from dir, downloading first when
// the archives are missing.
func Load(ctx context.Context, dir, split string) (*MNIST, error) {
	var imageFile, labelFile string
	switch split {
	case "train":
		imageFile, labelFile = TrainImagesFile, TrainLabelsFile
	case "test":
		imageFile, labelFile = TestImagesFile, TestLabelsFile
	default:
		return nil, fmt.Errorf("unknown split %q, want train or test", split)
	}

	if err := Download(ctx, dir, ""); err != nil {
		return nil, err
	}
	return Read(filepath.Join(dir, imageFile), filepath.Join(dir, labelFile))
}
