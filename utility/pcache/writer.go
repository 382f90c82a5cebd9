// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package pcache

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

// Write writes data for the adapter identified by id to w.
func Write(w io.Writer, id Identity, data []byte) (int64, error) {
	var compressed bytes.Buffer
	zw := lz4.NewWriter(&compressed)
	if _, err := zw.Write(data); err != nil {
		return 0, errors.Wrap(err, "compress")
	}
	if err := zw.Close(); err != nil {
		return 0, errors.Wrap(err, "compress")
	}

	rawHeader, err := gobEncode(Header{
		Version:        Version,
		DateCreated:    time.Now().Unix(),
		Identity:       id,
		Size:           int64(len(data)),
		CompressedSize: int64(compressed.Len()),
	})
	if err != nil {
		return 0, errors.Wrap(err, "encode header")
	}

	var written int64
	for _, chunk := range [][]byte{magic[:], int64ToBinary(int64(len(rawHeader))), rawHeader, compressed.Bytes()} {
		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// Save writes the cache file at path, replacing it atomically.
func Save(path string, id Identity, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := ioutil.TempFile(filepath.Dir(path), ".pcache")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err := Write(f, id, data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
