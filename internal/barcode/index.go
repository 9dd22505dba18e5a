// Package barcode keeps a bloom-filter index of every barcode known to
// the shop. A scan that the filter rules out is rejected at the
// register without a round-trip to the shop API; a positive answer is
// only "maybe" and still goes through the catalog lookup.
package barcode

import (
	"io"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

// Index is a probabilistic membership index over barcodes.
// Membership tests are safe for concurrent use; Add is not.
type Index struct {
	filter *bloom.BloomFilter
}

// New creates an index sized for the expected number of barcodes at the
// given false-positive rate.
func New(capacity uint, fpr float64) *Index {
	return &Index{filter: bloom.NewWithEstimates(capacity, fpr)}
}

// Add records a barcode.
func (i *Index) Add(code string) {
	i.filter.AddString(code)
}

// MightContain reports whether code could be a known barcode. False
// means the code is definitely not in the catalog export the index was
// built from.
func (i *Index) MightContain(code string) bool {
	return i.filter.TestString(code)
}

// WriteTo serializes the index.
func (i *Index) WriteTo(w io.Writer) (int64, error) {
	return i.filter.WriteTo(w)
}

// Save writes the index to path, replacing any existing file.
func (i *Index) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create index file")
	}
	if _, err := i.WriteTo(f); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "write index")
	}
	return f.Close()
}

// Load reads an index previously written by Save.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open index file")
	}
	defer func() {
		_ = f.Close()
	}()

	var filter bloom.BloomFilter
	if _, err := filter.ReadFrom(f); err != nil {
		return nil, errors.Wrap(err, "read index")
	}
	return &Index{filter: &filter}, nil
}
