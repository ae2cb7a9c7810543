package bitmem

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/ServusDei/bitmem/bitops"
	"github.com/ServusDei/bitmem/internal/resource"
	"github.com/ServusDei/bitmem/internal/snapcodec"
)

// Payload layout inside the compressed block, little-endian: the
// serialized occupied-slot bitmap, then one record per partition in
// ascending slot order.
//
//	[IndexLen u32][Roaring64 index bytes]
//	[Context u64][Identifier u64][SizeBits u64][WordCount u64][Words...]
const recordHeaderBytes = 4 * 8

// WriteSnapshot serializes all live partitions to w, in ascending tree
// slot order. The payload is a single checksummed block compressed per
// WithSnapshotCompression. IO is throttled per WithIOLimit; ctx bounds
// the throttle waits.
//
// Snapshots carry partition keys, sizes and contents. Base offsets are
// reassigned on load, so handles issued before a WriteSnapshot are not
// valid against the manager that loads it.
func (m *Manager) WriteSnapshot(ctx context.Context, w io.Writer) error {
	start := time.Now()
	count := m.occupied.GetCardinality()
	err := m.writeSnapshot(ctx, w, count)
	m.metrics.RecordSnapshot(true, count, time.Since(start), err)
	return err
}

func (m *Manager) writeSnapshot(ctx context.Context, w io.Writer, count uint64) error {
	lw := resource.NewRateLimitedWriter(ctx, w, m.ctrl)

	hdr := &snapcodec.FileHeader{
		Magic:          snapcodec.MagicNumber,
		Version:        snapcodec.Version,
		Compression:    uint8(m.opts.compression),
		PartitionCount: count,
	}
	if err := snapcodec.WriteHeader(lw, hdr); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	payload, err := m.encodePartitions()
	if err != nil {
		return fmt.Errorf("encode snapshot index: %w", err)
	}
	if err := snapcodec.WriteBlock(lw, payload, snapcodec.CompressionType(m.opts.compression)); err != nil {
		return err
	}

	m.logger.Debug("snapshot written", "partitions", count, "payload_bytes", len(payload))
	return nil
}

func (m *Manager) encodePartitions() ([]byte, error) {
	index, err := m.occupied.ToBytes()
	if err != nil {
		return nil, err
	}

	total := 4 + len(index)
	for _, p := range m.parts {
		total += recordHeaderBytes + p.bits.WordCount()*8
	}

	buf := make([]byte, 0, total)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(index))) //nolint:gosec // index length fits uint32
	buf = append(buf, index...)

	it := m.occupied.Iterator()
	for it.HasNext() {
		p := m.byMeta[it.Next()]
		buf = binary.LittleEndian.AppendUint64(buf, p.context)
		buf = binary.LittleEndian.AppendUint64(buf, p.identifier)
		buf = binary.LittleEndian.AppendUint64(buf, p.sizeBits)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(p.bits.WordCount()))
		for _, word := range p.bits.Words() {
			buf = binary.LittleEndian.AppendUint64(buf, word)
		}
	}
	return buf, nil
}

// LoadSnapshot restores partitions from a snapshot written by
// WriteSnapshot. Each record is reserved as if by Reserve, so a pair
// already live in the manager fails with ErrPartitionExists and the
// configured budget applies. Compression is taken from the file
// header, not from the manager's options.
//
// A failed load leaves the records decoded before the failure live in
// the manager; callers that need all-or-nothing loads should load into
// a fresh Manager first.
func (m *Manager) LoadSnapshot(ctx context.Context, r io.Reader) error {
	start := time.Now()
	count, err := m.loadSnapshot(ctx, r)
	m.metrics.RecordSnapshot(false, count, time.Since(start), err)
	return err
}

func (m *Manager) loadSnapshot(ctx context.Context, r io.Reader) (uint64, error) {
	lr := resource.NewRateLimitedReader(ctx, r, m.ctrl)

	hdr, err := snapcodec.ReadHeader(lr)
	if err != nil {
		return 0, err
	}
	compression := snapcodec.CompressionType(hdr.Compression)
	if !compression.Valid() {
		return 0, snapcodec.ErrInvalidCompression
	}

	payload, err := snapcodec.ReadBlock(lr, compression)
	if err != nil {
		return 0, err
	}

	if len(payload) < 4 {
		return 0, fmt.Errorf("%w: missing slot index", ErrSnapshotCorrupt)
	}
	indexLen := binary.LittleEndian.Uint32(payload)
	payload = payload[4:]
	if uint64(indexLen) > uint64(len(payload)) {
		return 0, fmt.Errorf("%w: truncated slot index", ErrSnapshotCorrupt)
	}
	index := roaring64.New()
	if err := index.UnmarshalBinary(payload[:indexLen]); err != nil {
		return 0, fmt.Errorf("%w: slot index: %v", ErrSnapshotCorrupt, err)
	}
	payload = payload[indexLen:]

	if index.GetCardinality() != hdr.PartitionCount {
		return 0, fmt.Errorf("%w: slot index holds %d entries, header says %d",
			ErrSnapshotCorrupt, index.GetCardinality(), hdr.PartitionCount)
	}

	for i := uint64(0); i < hdr.PartitionCount; i++ {
		payload, err = m.loadPartition(payload, index)
		if err != nil {
			return i, fmt.Errorf("snapshot partition %d: %w", i, err)
		}
	}
	if len(payload) != 0 {
		return hdr.PartitionCount, fmt.Errorf("%w: %d trailing payload bytes", ErrSnapshotCorrupt, len(payload))
	}

	m.logger.Debug("snapshot loaded", "partitions", hdr.PartitionCount)
	return hdr.PartitionCount, nil
}

func (m *Manager) loadPartition(payload []byte, index *roaring64.Bitmap) ([]byte, error) {
	if len(payload) < recordHeaderBytes {
		return nil, fmt.Errorf("%w: truncated record header", ErrSnapshotCorrupt)
	}
	context := binary.LittleEndian.Uint64(payload[0:])
	identifier := binary.LittleEndian.Uint64(payload[8:])
	sizeBits := binary.LittleEndian.Uint64(payload[16:])
	wordCount := binary.LittleEndian.Uint64(payload[24:])
	payload = payload[recordHeaderBytes:]

	if wordCount > uint64(len(payload)/8) {
		return nil, fmt.Errorf("%w: truncated record body", ErrSnapshotCorrupt)
	}
	if sizeBits == 0 || sizeBits > wordCount*bitops.WordBits {
		return nil, fmt.Errorf("%w: size %d bits exceeds %d words", ErrSnapshotCorrupt, sizeBits, wordCount)
	}

	if _, err := m.reserve(context, identifier, sizeBits); err != nil {
		return nil, err
	}

	p := m.parts[pairKey{context: context, identifier: identifier}]
	if !index.Contains(p.metaIdx) {
		return nil, fmt.Errorf("%w: pair (%d, %d) absent from slot index",
			ErrSnapshotCorrupt, context, identifier)
	}
	words := p.bits.Words()
	for w := 0; w < len(words) && uint64(w) < wordCount; w++ {
		words[w] = binary.LittleEndian.Uint64(payload[w*8:])
	}
	// The tail word may carry stale bits past sizeBits from the
	// snapshotting manager's history; clear them.
	if tail := int(sizeBits % bitops.WordBits); tail != 0 {
		words[len(words)-1] = bitops.ZeroHighBits(words[len(words)-1], tail)
	}

	return payload[wordCount*8:], nil
}
