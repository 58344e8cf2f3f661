// Package database implements the sync-state database: a per-side snapshot
// of the last-in-sync tree, keyed by partner UUID, loaded and saved
// transactionally. The wire format is a fixed magic header followed by a
// zlib-compressed payload; see the binary encode/decode routines in
// snapshot.go for the exact layout.
package database

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Magic is the fixed header every database file begins with (the trailing
// NUL is significant and part of the on-disk format).
var Magic = []byte("FreeFileSync\x00")

// FormatVersion is the current wire format version written by this package.
// Loading a payload with a different version is rejected, since the layout
// below is tied exactly to version 6.
const FormatVersion uint32 = 6

func writeBlob(w io.Writer, data []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

func readBlob(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

func writeString(w io.Writer, s string) error {
	return writeBlob(w, []byte(s))
}

func readString(r io.Reader) (string, error) {
	data, err := readBlob(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeBool(w io.Writer, b bool) error {
	var v byte
	if b {
		v = 1
	}
	_, err := w.Write([]byte{v})
	return err
}

func readBool(r io.Reader) (bool, error) {
	var buffer [1]byte
	if _, err := io.ReadFull(r, buffer[:]); err != nil {
		return false, err
	}
	return buffer[0] != 0, nil
}

func writeI64(w io.Writer, v int64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readI64(r io.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeU64(w io.Writer, v uint64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readU64(r io.Reader) (uint64, error) {
	var v uint64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeI32(w io.Writer, v int32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readI32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeU32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readU32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// errTruncated wraps an unexpected-EOF condition encountered partway through
// decoding a structure, to distinguish it from a clean end of stream at a
// sentinel boundary.
var errTruncated = errors.New("database payload truncated")

func wrapReadErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errTruncated
	}
	return err
}
