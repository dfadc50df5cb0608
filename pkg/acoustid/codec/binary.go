// Package codec converts fingerprints to and from their storage and
// transport encodings: the "Fp" binary format (optionally zstd compressed)
// and the legacy chromaprint base64 format produced by fpcalc.
package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/fingerprint"
)

// FormatVersion is the only layout of the "Fp" format understood here.
const FormatVersion = 1

const headerSize = 4

// Encode serializes hashes in the "Fp" format: the bytes 'F' 'p', the format
// version, the fingerprint algorithm version, then every sub-fingerprint
// XORed with its predecessor as a little-endian uint32.
func Encode(hashes fingerprint.Fingerprint, version uint8) []byte {
	data := make([]byte, headerSize+4*len(hashes))
	data[0], data[1], data[2], data[3] = 'F', 'p', FormatVersion, version

	var prev uint32
	for i, h := range hashes {
		binary.LittleEndian.PutUint32(data[headerSize+4*i:], h^prev)
		prev = h
	}
	return data
}

// Decode parses data produced by Encode and returns the hashes together with
// the fingerprint algorithm version.
func Decode(data []byte) (fingerprint.Fingerprint, uint8, error) {
	if len(data) < headerSize {
		return nil, 0, fmt.Errorf("%w: %d byte header", ErrTruncated, len(data))
	}
	if data[0] != 'F' || data[1] != 'p' {
		return nil, 0, ErrInvalidMagic
	}
	if data[2] != FormatVersion {
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidFormatVersion, data[2])
	}
	version := data[3]

	body := data[headerSize:]
	if len(body)%4 != 0 {
		return nil, 0, fmt.Errorf("%w: %d trailing bytes", ErrTruncated, len(body)%4)
	}

	hashes := make(fingerprint.Fingerprint, len(body)/4)
	var prev uint32
	for i := range hashes {
		prev ^= binary.LittleEndian.Uint32(body[4*i:])
		hashes[i] = prev
	}
	return hashes, version, nil
}
