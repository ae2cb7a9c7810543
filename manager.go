package bitmem

import (
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/ServusDei/bitmem/bitarray"
	"github.com/ServusDei/bitmem/bitops"
	"github.com/ServusDei/bitmem/internal/mem"
	"github.com/ServusDei/bitmem/internal/resource"
	"github.com/ServusDei/bitmem/treeindex"
)

// Occupancy metadata is held in fixed-size pages so that sparse tree
// indices do not force a flat array over the whole index space.
const (
	pageShift = 16
	pageBits  = 1 << pageShift
	pageWords = pageBits / bitops.WordBits
)

// maxKey bounds each half of the pair key. The two halves are
// interleaved into a single 64-bit tree address, so each must fit in
// 32 bits.
const maxKey = 1<<32 - 1

// maxSizeBits bounds a partition size so that the word-rounded backing
// storage is representable and its bit count fits the int64 budget
// accounting.
const maxSizeBits = 1<<63 - bitops.WordBits

type pairKey struct {
	context    uint64
	identifier uint64
}

type partition struct {
	context    uint64
	identifier uint64
	slot       treeindex.Slot
	metaIdx    uint64
	base       uint64
	sizeBits   uint64
	bits       *bitarray.Array
}

func (p *partition) handle() Handle {
	return Handle{
		Context:       p.context,
		Identifier:    p.identifier,
		BaseBitOffset: p.base,
		SizeBits:      p.sizeBits,
	}
}

// Manager is the reserve/resize/relinquish state machine keyed by
// (context, identifier). Placement within the implicit tree is derived
// from the pair by bit interleaving, and per-slot occupancy is tracked
// in paged bit arrays plus a roaring bitmap for ordered iteration.
//
// Manager is not safe for concurrent mutation. Callers sharing one
// Manager across goroutines must serialize access externally.
type Manager struct {
	opts    options
	logger  *Logger
	metrics MetricsCollector
	ctrl    *resource.Controller

	parts    map[pairKey]*partition
	byMeta   map[uint64]*partition
	occupied *roaring64.Bitmap
	pages    map[uint64]*bitarray.Array
	cursor   uint64
}

var _ Partitioner = (*Manager)(nil)

// NewManager creates an empty Manager.
func NewManager(optFns ...Option) *Manager {
	o := applyOptions(optFns)

	return &Manager{
		opts:    o,
		logger:  o.logger,
		metrics: o.metricsCollector,
		ctrl: resource.NewController(resource.Config{
			AddressSpaceBits:   int64(o.addressSpaceBits), //nolint:gosec // validated by semaphore semantics
			IOLimitBytesPerSec: o.ioLimitBytes,
		}),
		parts:    make(map[pairKey]*partition),
		byMeta:   make(map[uint64]*partition),
		occupied: roaring64.New(),
		pages:    make(map[uint64]*bitarray.Array),
	}
}

// pairAddress derives the linear tree address of a pair. Interleaving
// the two halves bit by bit is a bijection over 32-bit halves, so
// distinct pairs never collide on an address.
func pairAddress(context, identifier uint64) (uint64, error) {
	if context > maxKey || identifier > maxKey {
		return 0, ErrKeyRange
	}
	return bitops.Interleave(uint32(context), uint32(identifier)), nil
}

// Reserve creates a live partition of at least bits bits for an absent
// pair. It fails with ErrPartitionExists if the pair is already live,
// ErrInvalidSize if bits is zero or too large for word-rounded backing
// storage to represent, ErrKeyRange if either half of the pair exceeds
// 32 bits, and ErrAddressSpaceExhausted if the configured budget
// cannot cover the request.
func (m *Manager) Reserve(context, identifier, bits uint64) (Handle, error) {
	start := time.Now()
	h, err := m.reserve(context, identifier, bits)
	m.metrics.RecordReserve(bits, time.Since(start), err)
	return h, err
}

func (m *Manager) reserve(context, identifier, bits uint64) (Handle, error) {
	if bits == 0 || bits > maxSizeBits {
		return Handle{}, &PartitionError{Op: "reserve", Context: context, Identifier: identifier, Err: ErrInvalidSize}
	}

	key := pairKey{context: context, identifier: identifier}
	if _, ok := m.parts[key]; ok {
		return Handle{}, &PartitionError{Op: "reserve", Context: context, Identifier: identifier, Err: ErrPartitionExists}
	}

	addr, err := pairAddress(context, identifier)
	if err != nil {
		return Handle{}, &PartitionError{Op: "reserve", Context: context, Identifier: identifier, Err: err}
	}
	slot := treeindex.SlotOf(addr)
	metaIdx := slot.Index()

	words := mem.WordsFor(bits)
	storeBits := uint64(words) * bitops.WordBits
	if err := m.ctrl.AcquireBits(int64(storeBits)); err != nil { //nolint:gosec // words derives from bits
		return Handle{}, &PartitionError{Op: "reserve", Context: context, Identifier: identifier, Err: ErrAddressSpaceExhausted}
	}

	p := &partition{
		context:    context,
		identifier: identifier,
		slot:       slot,
		metaIdx:    metaIdx,
		base:       m.cursor,
		sizeBits:   bits,
		bits:       m.newArray(words),
	}
	m.cursor += storeBits

	m.parts[key] = p
	m.byMeta[metaIdx] = p
	m.occupied.Add(metaIdx)
	m.markSlot(metaIdx, 1)

	m.logger.WithContextID(context).WithIdentifier(identifier).WithBits(bits).
		Debug("partition reserved", "node", slot.Node, "side", slot.Side, "base", p.base)

	return p.handle(), nil
}

// Resize grows or shrinks a live partition. The overlapping prefix
// min(old, new) is preserved and growth is zero-filled. Growing past
// the current word capacity relocates the partition to a fresh base
// offset; the pair identity is unchanged. It fails with
// ErrPartitionNotFound if the pair is absent, ErrInvalidSize if bits
// is zero or unrepresentable, and ErrAddressSpaceExhausted if growth
// exceeds the budget.
func (m *Manager) Resize(context, identifier, bits uint64) (Handle, error) {
	start := time.Now()
	var oldBits uint64
	if p, ok := m.parts[pairKey{context: context, identifier: identifier}]; ok {
		oldBits = p.sizeBits
	}
	h, err := m.resize(context, identifier, bits)
	m.metrics.RecordResize(oldBits, bits, time.Since(start), err)
	return h, err
}

func (m *Manager) resize(context, identifier, bits uint64) (Handle, error) {
	if bits == 0 || bits > maxSizeBits {
		return Handle{}, &PartitionError{Op: "resize", Context: context, Identifier: identifier, Err: ErrInvalidSize}
	}

	p, ok := m.parts[pairKey{context: context, identifier: identifier}]
	if !ok {
		return Handle{}, &PartitionError{Op: "resize", Context: context, Identifier: identifier, Err: ErrPartitionNotFound}
	}
	if bits == p.sizeBits {
		return p.handle(), nil
	}

	oldWords := p.bits.WordCount()
	newWords := mem.WordsFor(bits)

	if bits > p.sizeBits {
		if newWords > oldWords {
			delta := uint64(newWords-oldWords) * bitops.WordBits
			if err := m.ctrl.AcquireBits(int64(delta)); err != nil { //nolint:gosec // bounded by word count
				return Handle{}, &PartitionError{Op: "resize", Context: context, Identifier: identifier, Err: ErrAddressSpaceExhausted}
			}
			fresh := m.newArray(newWords)
			copy(fresh.Words(), p.bits.Words())
			p.bits = fresh
			p.base = m.cursor
			m.cursor += uint64(newWords) * bitops.WordBits
			m.logger.WithContextID(context).WithIdentifier(identifier).
				Debug("partition relocated", "base", p.base, "words", newWords)
		}
		// Bits past the old size within the tail word are already zero:
		// reserve zeroes storage and shrink masks the tail.
		p.sizeBits = bits
		return p.handle(), nil
	}

	if newWords < oldWords {
		m.ctrl.ReleaseBits(int64(oldWords-newWords) * bitops.WordBits)
		p.bits = bitarray.FromWords(p.bits.Words()[:newWords], bitarray.WithFatalFunc(m.opts.fatal))
	}
	// Mask the tail word so a later grow observes zero fill.
	words := p.bits.Words()
	if tail := int(bits % bitops.WordBits); tail != 0 {
		words[len(words)-1] = bitops.ZeroHighBits(words[len(words)-1], tail)
	}
	p.sizeBits = bits
	return p.handle(), nil
}

// Relinquish destroys a live partition, releasing its storage and
// budget. The pair may be reserved again afterwards. It fails with
// ErrPartitionNotFound if the pair is absent.
func (m *Manager) Relinquish(context, identifier uint64) error {
	start := time.Now()
	err := m.relinquish(context, identifier)
	m.metrics.RecordRelinquish(time.Since(start), err)
	return err
}

func (m *Manager) relinquish(context, identifier uint64) error {
	key := pairKey{context: context, identifier: identifier}
	p, ok := m.parts[key]
	if !ok {
		return &PartitionError{Op: "relinquish", Context: context, Identifier: identifier, Err: ErrPartitionNotFound}
	}

	m.ctrl.ReleaseBits(int64(p.bits.WordCount()) * bitops.WordBits)

	delete(m.parts, key)
	delete(m.byMeta, p.metaIdx)
	m.occupied.Remove(p.metaIdx)
	m.markSlot(p.metaIdx, 0)
	if page, ok := m.pages[p.metaIdx>>pageShift]; ok && page.PopCount() == 0 {
		delete(m.pages, p.metaIdx>>pageShift)
	}

	m.logger.WithContextID(context).WithIdentifier(identifier).Debug("partition relinquished")
	return nil
}

// GetBit reads one bit of a live partition. The bit index is relative
// to the partition base. An absent pair is a recoverable error; an
// index at or past the partition size is fatal.
func (m *Manager) GetBit(context, identifier, bit uint64) (uint64, error) {
	p, err := m.lookup("get_bit", context, identifier)
	if err != nil {
		return 0, err
	}
	m.checkRange("get_bit", p, bit, 1)
	return p.bits.Get(bit), nil
}

// SetBit writes the low bit of value into a live partition.
func (m *Manager) SetBit(context, identifier, bit, value uint64) error {
	p, err := m.lookup("set_bit", context, identifier)
	if err != nil {
		return err
	}
	m.checkRange("set_bit", p, bit, 1)
	p.bits.Set(bit, value)
	return nil
}

// GetSpan reads a run of width bits (1..64) of a live partition,
// returned in the low bits of the result.
func (m *Manager) GetSpan(context, identifier, bit uint64, width int) (uint64, error) {
	p, err := m.lookup("get_span", context, identifier)
	if err != nil {
		return 0, err
	}
	m.checkRange("get_span", p, bit, width)
	return p.bits.GetSpan(bit, width), nil
}

// SetSpan writes the low width bits of value into a live partition.
func (m *Manager) SetSpan(context, identifier, bit uint64, width int, value uint64) error {
	p, err := m.lookup("set_span", context, identifier)
	if err != nil {
		return err
	}
	m.checkRange("set_span", p, bit, width)
	p.bits.SetSpan(bit, width, value)
	return nil
}

// Lookup returns the current handle of a pair and whether it is live.
func (m *Manager) Lookup(context, identifier uint64) (Handle, bool) {
	p, ok := m.parts[pairKey{context: context, identifier: identifier}]
	if !ok {
		return Handle{}, false
	}
	return p.handle(), true
}

// Len returns the number of live partitions.
func (m *Manager) Len() int {
	return len(m.parts)
}

// BitsUsed returns the total backing bits held by live partitions.
func (m *Manager) BitsUsed() int64 {
	return m.ctrl.BitsUsed()
}

// BitsLimit returns the configured address-space budget (0 if
// unlimited).
func (m *Manager) BitsLimit() int64 {
	return m.ctrl.BitsLimit()
}

// ManagerStats is a point-in-time view of manager state.
type ManagerStats struct {
	LivePartitions int
	BitsUsed       int64
	BitsLimit      int64
	OccupiedSlots  uint64
	OccupancyPages int
	NextBaseOffset uint64
}

// Stats returns a snapshot of manager state.
func (m *Manager) Stats() ManagerStats {
	return ManagerStats{
		LivePartitions: len(m.parts),
		BitsUsed:       m.ctrl.BitsUsed(),
		BitsLimit:      m.ctrl.BitsLimit(),
		OccupiedSlots:  m.occupied.GetCardinality(),
		OccupancyPages: len(m.pages),
		NextBaseOffset: m.cursor,
	}
}

func (m *Manager) lookup(op string, context, identifier uint64) (*partition, error) {
	p, ok := m.parts[pairKey{context: context, identifier: identifier}]
	if !ok {
		return nil, &PartitionError{Op: op, Context: context, Identifier: identifier, Err: ErrPartitionNotFound}
	}
	return p, nil
}

func (m *Manager) checkRange(op string, p *partition, bit uint64, width int) {
	if width < 1 || width > bitops.WordBits {
		m.fatalf(op, "width %d out of range [1, %d]", width, bitops.WordBits)
	}
	if bit >= p.sizeBits || bit+uint64(width) > p.sizeBits {
		m.fatalf(op, "bit range [%d, %d) out of partition range [0, %d)",
			bit, bit+uint64(width), p.sizeBits)
	}
}

func (m *Manager) fatalf(op, format string, args ...any) {
	if m.opts.fatal != nil {
		m.opts.fatal(op, format, args...)
		return
	}
	panic(fmt.Sprintf("bitmem: %s: %s", op, fmt.Sprintf(format, args...)))
}

func (m *Manager) newArray(words int) *bitarray.Array {
	if m.opts.fatal != nil {
		return bitarray.New(words, bitarray.WithFatalFunc(m.opts.fatal))
	}
	return bitarray.New(words)
}

func (m *Manager) markSlot(metaIdx, value uint64) {
	pageIdx := metaIdx >> pageShift
	page, ok := m.pages[pageIdx]
	if !ok {
		if value == 0 {
			return
		}
		page = m.newArray(pageWords)
		m.pages[pageIdx] = page
	}
	page.Set(metaIdx&(pageBits-1), value)
}

// SlotOccupied reports whether the tree slot of a pair is held by a
// live partition. The pair need not be valid; out-of-range halves
// report false.
func (m *Manager) SlotOccupied(context, identifier uint64) bool {
	addr, err := pairAddress(context, identifier)
	if err != nil {
		return false
	}
	metaIdx := treeindex.SlotOf(addr).Index()
	page, ok := m.pages[metaIdx>>pageShift]
	if !ok {
		return false
	}
	return page.Get(metaIdx&(pageBits-1)) == 1
}
