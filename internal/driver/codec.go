package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeBatch writes b as msgpack.
func EncodeBatch(w io.Writer, b *Batch) error {
	return msgpack.NewEncoder(w).Encode(b)
}

// DecodeBatch reads a batch written by EncodeBatch and rejects other schema versions.
func DecodeBatch(r io.Reader) (*Batch, error) {
	var b Batch
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	if b.Schema != batchSchemaVersion {
		return nil, fmt.Errorf("decode batch: schema %d, want %d", b.Schema, batchSchemaVersion)
	}
	return &b, nil
}

// WriteBatchFile atomically replaces path with the msgpack encoding of b.
func WriteBatchFile(path string, b *Batch) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".abilower-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = EncodeBatch(f, b); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadBatchFile reads a batch written by WriteBatchFile.
func ReadBatchFile(path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeBatch(f)
}
