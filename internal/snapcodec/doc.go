// Package snapcodec implements the on-disk framing for partition-space
// snapshots: a fixed header followed by a length-prefixed, CRC32
// checksummed payload block.
//
// Block format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// If CompressedSize == 0, the block is stored uncompressed.
package snapcodec
