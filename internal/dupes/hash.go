package dupes

import (
	"context"
	"crypto/md5" //nolint:gosec // Offered for compatibility, not for security
	"crypto/sha1" //nolint:gosec // Offered for compatibility, not for security
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

// Algorithm describes a digest algorithm.
type Algorithm struct {
	// Name is the configuration spelling.
	Name string
	// Bits is the digest width.
	Bits int
	// New creates a fresh hash state.
	New func() hash.Hash
}

//nolint:gochecknoglobals // Lookup table
var algorithms = map[string]Algorithm{
	"md5":    {Name: "md5", Bits: 128, New: md5.New},
	"sha1":   {Name: "sha1", Bits: 160, New: sha1.New},
	"sha256": {Name: "sha256", Bits: 256, New: sha256.New},
	"sha512": {Name: "sha512", Bits: 512, New: sha512.New},
	"xxhash": {Name: "xxhash", Bits: 64, New: func() hash.Hash { return xxhash.New() }},
}

// Algorithms returns the supported algorithm names, sorted.
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// LookupAlgorithm returns the algorithm with the given name.
func LookupAlgorithm(name string) (Algorithm, error) {
	algorithm, ok := algorithms[strings.ToLower(name)]
	if !ok {
		return Algorithm{}, fmt.Errorf("unsupported hash algorithm %q: must be one of %v", name, Algorithms())
	}

	return algorithm, nil
}

// Hasher computes whole-file digests.
type Hasher struct {
	fs         afero.Fs
	algorithm  Algorithm
	bufferSize int
}

// NewHasher creates a Hasher reading from fsys.
func NewHasher(fsys afero.Fs, algorithm Algorithm, bufferSize int) *Hasher {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	return &Hasher{fs: fsys, algorithm: algorithm, bufferSize: bufferSize}
}

// Algorithm returns the algorithm in use.
func (h *Hasher) Algorithm() Algorithm {
	return h.algorithm
}

// Hash returns the hex digest of the file at path.
// Any open or read failure is an ErrRead; cancelling ctx aborts between reads
// and returns ctx's error.
func (h *Hasher) Hash(ctx context.Context, path string) (string, error) {
	file, err := h.fs.Open(path)
	if err != nil {
		return "", pathError(ErrRead, path, err)
	}
	defer file.Close()

	state := h.algorithm.New()
	buffer := make([]byte, h.bufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := file.Read(buffer)
		if n > 0 {
			state.Write(buffer[:n])
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return "", pathError(ErrRead, path, err)
		}
	}

	return hex.EncodeToString(state.Sum(nil)), nil
}
