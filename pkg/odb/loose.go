package odb

import (
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
)

// readChunkSize is the granularity scratch buffers grow by while inflating.
const readChunkSize = 32 * 1024

// LooseStore reads zlib-deflated loose objects laid out as
// <root>/aa/bbbb... where aa is the first hash byte in hex.
type LooseStore struct {
	root string
}

// NewLooseStore creates a store rooted at dir, typically ".git/objects".
func NewLooseStore(dir string) *LooseStore {
	return &LooseStore{root: dir}
}

// Object inflates the loose object for hash into buf and parses its header.
// A missing file reports ErrNotFound; everything else is an I/O or
// corruption failure.
func (s *LooseStore) Object(hash gitobj.Hash, buf *[]byte) (Object, error) {
	hex := hash.String()
	path := filepath.Join(s.root, hex[:2], hex[2:])

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Object{}, fmt.Errorf("%w: %s", ErrNotFound, hex)
		}

		return Object{}, fmt.Errorf("open loose object %s: %w", hex, err)
	}
	defer file.Close()

	reader, err := zlib.NewReader(file)
	if err != nil {
		return Object{}, fmt.Errorf("inflate loose object %s: %w", hex, err)
	}
	defer reader.Close()

	data, err := readAll(reader, (*buf)[:0])
	*buf = data

	if err != nil {
		return Object{}, fmt.Errorf("read loose object %s: %w", hex, err)
	}

	kind, payload, err := parseHeader(data)
	if err != nil {
		return Object{}, fmt.Errorf("loose object %s: %w", hex, err)
	}

	return Object{Kind: kind, Data: payload}, nil
}

// readAll drains r into data, growing it in place so the caller's scratch
// buffer keeps its capacity across lookups.
func readAll(r io.Reader, data []byte) ([]byte, error) {
	for {
		if len(data) == cap(data) {
			data = append(data, make([]byte, readChunkSize)...)[:len(data)]
		}

		n, err := r.Read(data[len(data):cap(data)])
		data = data[:len(data)+n]

		if errors.Is(err, io.EOF) {
			return data, nil
		}

		if err != nil {
			return data, err
		}
	}
}

// WriteLoose deflates an object into the loose layout under dir, returning
// its hash. Existing objects are left untouched; content-addressed files
// never change once written.
func WriteLoose(dir string, kind Kind, data []byte) (gitobj.Hash, error) {
	hash := HashObject(kind, data)
	hex := hash.String()

	objDir := filepath.Join(dir, hex[:2])
	objPath := filepath.Join(objDir, hex[2:])

	if _, err := os.Stat(objPath); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(objDir, 0o755); err != nil {
		return gitobj.Hash{}, fmt.Errorf("create object directory: %w", err)
	}

	file, err := os.CreateTemp(objDir, "tmp_obj_*")
	if err != nil {
		return gitobj.Hash{}, fmt.Errorf("create loose object: %w", err)
	}

	writer := zlib.NewWriter(file)

	header := fmt.Sprintf("%s %d\x00", kind, len(data))
	if _, err = writer.Write([]byte(header)); err == nil {
		_, err = writer.Write(data)
	}

	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}

	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		os.Remove(file.Name())

		return gitobj.Hash{}, fmt.Errorf("write loose object %s: %w", hex, err)
	}

	if err := os.Rename(file.Name(), objPath); err != nil {
		os.Remove(file.Name())

		return gitobj.Hash{}, fmt.Errorf("place loose object %s: %w", hex, err)
	}

	return hash, nil
}
