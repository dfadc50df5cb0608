package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/fingerprint"
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Compress encodes hashes in the "Fp" format and zstd compresses the result.
// The XOR deltas between neighbouring frames make the data compress well.
func Compress(hashes fingerprint.Fingerprint, version uint8) []byte {
	enc := getZstdEncoder()
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(Encode(hashes, version), nil)
}

// Decompress reverses Compress.
func Decompress(data []byte) (fingerprint.Fingerprint, uint8, error) {
	dec := getZstdDecoder()
	defer zstdDecoderPool.Put(dec)

	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	return Decode(raw)
}

// IsCompressed reports whether data starts with the zstd frame magic.
func IsCompressed(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x28 && data[1] == 0xB5 && data[2] == 0x2F && data[3] == 0xFD
}
