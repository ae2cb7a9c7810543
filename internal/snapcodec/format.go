package snapcodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

const (
	// MagicNumber identifies partition-space snapshot files (ASCII: "BMS0").
	MagicNumber = 0x424D5330
	// Version is the current snapshot format version (v1.0.0).
	Version = 0x00010000
)

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported version")
	ErrInvalidCompression = errors.New("invalid compression type")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
)

// FileHeader is the fixed-size header at the start of every snapshot.
type FileHeader struct {
	Magic          uint32 // 0x424D5330 ("BMS0")
	Version        uint32 // Snapshot format version
	Compression    uint8  // CompressionType of the payload block
	Padding        [7]byte
	PartitionCount uint64 // Number of partition records in the payload
}

// WriteHeader writes the header in little-endian layout.
func WriteHeader(w io.Writer, h *FileHeader) error {
	return binary.Write(w, binary.LittleEndian, h)
}

// ReadHeader reads and validates the header.
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var h FileHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}
	if h.Magic != MagicNumber {
		return nil, ErrInvalidMagic
	}
	if h.Version != Version {
		return nil, ErrInvalidVersion
	}
	return &h, nil
}

// WriteBlock compresses data and writes it as a length-prefixed,
// checksummed block: [BlockLen uint32][CRC32 uint32][Block...].
func WriteBlock(w io.Writer, data []byte, compression CompressionType) error {
	block, err := CompressBlock(data, compression)
	if err != nil {
		return fmt.Errorf("compress snapshot block: %w", err)
	}

	var prefix [8]byte
	binary.LittleEndian.PutUint32(prefix[0:], uint32(len(block))) //nolint:gosec // block length fits uint32
	binary.LittleEndian.PutUint32(prefix[4:], crc32.ChecksumIEEE(block))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err = w.Write(block)
	return err
}

// ReadBlock reads a block written by WriteBlock, verifies its checksum
// and decompresses it.
func ReadBlock(r io.Reader, compression CompressionType) ([]byte, error) {
	var prefix [8]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, fmt.Errorf("read snapshot block prefix: %w", err)
	}

	blockLen := binary.LittleEndian.Uint32(prefix[0:])
	wantCRC := binary.LittleEndian.Uint32(prefix[4:])

	block := make([]byte, blockLen)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, fmt.Errorf("read snapshot block: %w", err)
	}

	if crc32.ChecksumIEEE(block) != wantCRC {
		return nil, ErrChecksumMismatch
	}

	return DecompressBlock(block, compression)
}
