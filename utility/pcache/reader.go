// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package pcache

import (
	"bytes"
	"io"
	"os"

	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
)

// ReadHeader reads and checks the header at the start of r. It also
// returns the offset of the payload.
func ReadHeader(r io.ReaderAt) (Header, int64, error) {
	prefix := make([]byte, MagicLength+HeaderSizeNumberLength)
	if num, err := r.ReadAt(prefix, 0); num < len(prefix) {
		if err == nil || err == io.EOF {
			err = ErrFileFormat
		}
		return Header{}, 0, err
	}
	if !bytes.Equal(prefix[:MagicLength], magic[:]) {
		return Header{}, 0, ErrFileFormat
	}

	headerSize := binaryToInt64(prefix[MagicLength:])
	if headerSize <= 0 || headerSize > 1<<20 {
		return Header{}, 0, ErrFileFormat
	}

	headerBytes := make([]byte, headerSize)
	if num, _ := r.ReadAt(headerBytes, int64(len(prefix))); int64(num) < headerSize {
		return Header{}, 0, ErrFileFormat
	}

	var header Header
	if err := gobDecode(&header, headerBytes); err != nil {
		return Header{}, 0, errors.Wrap(ErrFileFormat, err.Error())
	}
	if header.Version != Version {
		return Header{}, 0, errors.Wrapf(ErrFileFormat, "version %d", header.Version)
	}
	return header, int64(len(prefix)) + headerSize, nil
}

// Read returns the cache blob in r if it was written for id.
func Read(r io.ReaderAt, id Identity) ([]byte, error) {
	header, offset, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if header.Identity != id {
		return nil, ErrMismatch
	}

	data := make([]byte, header.Size)
	zr := lz4.NewReader(io.NewSectionReader(r, offset, header.CompressedSize))
	if _, err := io.ReadFull(zr, data); err != nil {
		return nil, errors.Wrap(ErrFileFormat, err.Error())
	}
	return data, nil
}

// Load memory maps the cache file at path and returns its blob. A missing
// file is not an error, it yields no data.
func Load(path string, id Identity) ([]byte, error) {
	r, err := mmap.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer r.Close()
	return Read(r, id)
}
