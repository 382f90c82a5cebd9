// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package pcache stores pipeline cache blobs on disk. A file holds a single
// lz4 compressed blob behind a gob encoded header that identifies the
// adapter which produced it, so that a cache from a different device or
// driver is never handed back to the driver. Files are read through a
// memory mapping.
package pcache

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"

	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
)

// package errors
var (
	ErrFileFormat = errors.New("corrupted or not a pipeline cache file")
	ErrMismatch   = errors.New("pipeline cache belongs to another adapter")
)

// Sizes relevant to the header of file
const (
	MagicLength            = 4
	HeaderSizeNumberLength = 8
	Version                = 1
)

var magic = [MagicLength]byte{'V', 'P', 'C', '\x00'}

// Identity is what makes a cache blob usable on an adapter.
type Identity struct {
	VendorID      uint32
	DeviceID      uint32
	DriverVersion uint32
	UUID          [16]byte
}

// IdentityOf extracts the cache identity of an adapter.
func IdentityOf(info gfx.AdapterInfo) Identity {
	return Identity{
		VendorID:      info.VendorID,
		DeviceID:      info.DeviceID,
		DriverVersion: info.DriverVersion,
		UUID:          info.PipelineCacheUUID,
	}
}

// Header is the file header for cache files.
type Header struct {
	Version        int64
	DateCreated    int64
	Identity       Identity
	Size           int64
	CompressedSize int64
}

func int64ToBinary(num int64) []byte {
	buf := make([]byte, HeaderSizeNumberLength)
	binary.LittleEndian.PutUint64(buf, uint64(num))
	return buf
}

func binaryToInt64(bts []byte) int64 {
	return int64(binary.LittleEndian.Uint64(bts))
}

func gobEncode(data interface{}) ([]byte, error) {
	var encoded bytes.Buffer
	if err := gob.NewEncoder(&encoded).Encode(data); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func gobDecode(obj interface{}, bts []byte) error {
	return gob.NewDecoder(bytes.NewReader(bts)).Decode(obj)
}
