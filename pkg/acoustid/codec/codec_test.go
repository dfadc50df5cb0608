package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"runtime"
	"testing"

	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/fingerprint"
)

func randomHashes(n int, seed uint64) fingerprint.Fingerprint {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	fp := make(fingerprint.Fingerprint, n)
	for i := range fp {
		fp[i] = rng.Uint32()
	}
	return fp
}

func equalHashes(a, b fingerprint.Fingerprint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestEncodeLayout tests the header and XOR delta layout of the "Fp" format
func TestEncodeLayout(t *testing.T) {
	data := Encode(fingerprint.Fingerprint{1, 2, 3}, 99)

	if !bytes.Equal(data[0:2], []byte("Fp")) {
		t.Errorf("Magic = %q, want \"Fp\"", data[0:2])
	}
	if data[2] != 1 || data[3] != 99 {
		t.Errorf("Versions = (%d, %d), want (1, 99)", data[2], data[3])
	}
	if len(data) != 4+4*3 {
		t.Fatalf("Encoded length = %d, want 16", len(data))
	}

	want := []uint32{1, 2 ^ 1, 3 ^ 2}
	for i, w := range want {
		if got := binary.LittleEndian.Uint32(data[4+4*i:]); got != w {
			t.Errorf("Word %d = %d, want %d", i, got, w)
		}
	}
}

// TestDecodeRoundTrip tests that Decode reverses Encode
func TestDecodeRoundTrip(t *testing.T) {
	hashes := randomHashes(500, 1)

	got, version, err := Decode(Encode(hashes, 1))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if version != 1 {
		t.Errorf("Version = %d, want 1", version)
	}
	if !equalHashes(got, hashes) {
		t.Error("Decoded hashes differ from the input")
	}
}

// TestDecodeInvalid tests the error kinds of Decode
func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", []byte("Fp"), ErrTruncated},
		{"bad magic", []byte{'A', 'a', 1, 1}, ErrInvalidMagic},
		{"bad format", []byte{'F', 'p', 0, 1}, ErrInvalidFormatVersion},
		{"partial word", []byte{'F', 'p', 1, 1, 0, 0}, ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode error = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestCompressRoundTrip tests zstd compression of the "Fp" format
func TestCompressRoundTrip(t *testing.T) {
	hashes := make(fingerprint.Fingerprint, 1000)
	for i := range hashes {
		// slowly changing frames, like real audio
		hashes[i] = uint32(i/10) * 0x01010101
	}

	compressed := Compress(hashes, 1)
	if len(compressed) >= len(hashes)*4 {
		t.Errorf("Compressed size %d is not smaller than raw size %d", len(compressed), len(hashes)*4)
	}
	if !IsCompressed(compressed) {
		t.Error("Compressed data lacks the zstd magic")
	}

	got, version, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if version != 1 || !equalHashes(got, hashes) {
		t.Error("Decompressed fingerprint differs from the input")
	}
}

// TestDecompressInvalid tests errors from corrupt compressed input
func TestDecompressInvalid(t *testing.T) {
	if _, _, err := Decompress([]byte("invalid data")); !errors.Is(err, ErrDecompress) {
		t.Errorf("Decompress(garbage) error = %v, want %v", err, ErrDecompress)
	}

	enc := getZstdEncoder()
	defer zstdEncoderPool.Put(enc)

	badMagic := enc.EncodeAll([]byte{'A', 'a', 1, 1}, nil)
	if _, _, err := Decompress(badMagic); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("Decompress(bad magic) error = %v, want %v", err, ErrInvalidMagic)
	}

	badFormat := enc.EncodeAll([]byte{'F', 'p', 0, 1}, nil)
	if _, _, err := Decompress(badFormat); !errors.Is(err, ErrInvalidFormatVersion) {
		t.Errorf("Decompress(bad format) error = %v, want %v", err, ErrInvalidFormatVersion)
	}
}

// TestLegacyKnownValues tests the legacy encoder against hand packed streams
func TestLegacyKnownValues(t *testing.T) {
	tests := []struct {
		name   string
		hashes fingerprint.Fingerprint
		bytes  []byte
		text   string
	}{
		{"single bit", fingerprint.Fingerprint{1}, []byte{1, 0, 0, 1, 0x01}, "AQAAAQE"},
		{"exception", fingerprint.Fingerprint{1 << 9}, []byte{1, 0, 0, 1, 0x07, 0x03}, "AQAAAQcD"},
		{"xor delta", fingerprint.Fingerprint{1, 3}, []byte{1, 0, 0, 2, 0x81, 0x00}, "AQAAAoEA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := CompressLegacy(tt.hashes, 1)
			if err != nil {
				t.Fatalf("CompressLegacy failed: %v", err)
			}
			if !bytes.Equal(data, tt.bytes) {
				t.Errorf("CompressLegacy = % x, want % x", data, tt.bytes)
			}

			text, err := EncodeLegacy(tt.hashes, 1)
			if err != nil {
				t.Fatalf("EncodeLegacy failed: %v", err)
			}
			if text != tt.text {
				t.Errorf("EncodeLegacy = %q, want %q", text, tt.text)
			}

			got, algorithm, err := DecodeLegacy(tt.text)
			if err != nil {
				t.Fatalf("DecodeLegacy failed: %v", err)
			}
			if algorithm != 1 || !equalHashes(got, tt.hashes) {
				t.Errorf("DecodeLegacy = (%v, %d), want (%v, 1)", got, algorithm, tt.hashes)
			}
		})
	}
}

// TestLegacyRoundTrip tests random fingerprints including zero and all-ones frames
func TestLegacyRoundTrip(t *testing.T) {
	hashes := randomHashes(1000, 2)
	hashes[10] = 0
	hashes[11] = 0
	hashes[12] = 0xFFFFFFFF
	hashes[13] = 0x80000000

	text, err := EncodeLegacy(hashes, 2)
	if err != nil {
		t.Fatalf("EncodeLegacy failed: %v", err)
	}

	got, algorithm, err := DecodeLegacy(text)
	if err != nil {
		t.Fatalf("DecodeLegacy failed: %v", err)
	}
	if algorithm != 2 {
		t.Errorf("Algorithm = %d, want 2", algorithm)
	}
	if !equalHashes(got, hashes) {
		t.Error("Decoded legacy fingerprint differs from the input")
	}

	empty, err := EncodeLegacy(nil, 1)
	if err != nil {
		t.Fatalf("EncodeLegacy(empty) failed: %v", err)
	}
	if got, _, err := DecodeLegacy(empty); err != nil || len(got) != 0 {
		t.Errorf("DecodeLegacy(empty) = (%v, %v), want empty", got, err)
	}
}

// TestLegacyInvalid tests errors on corrupt legacy input
func TestLegacyInvalid(t *testing.T) {
	if _, _, err := DecodeLegacy("not base64!"); !errors.Is(err, ErrInvalidBase64) {
		t.Errorf("DecodeLegacy(bad base64) error = %v, want %v", err, ErrInvalidBase64)
	}
	if _, _, err := DecompressLegacy([]byte{1, 0}); !errors.Is(err, ErrTruncated) {
		t.Errorf("DecompressLegacy(short) error = %v, want %v", err, ErrTruncated)
	}
	// claims two frames but carries one
	if _, _, err := DecompressLegacy([]byte{1, 0, 0, 2, 0x01}); !errors.Is(err, ErrTruncated) {
		t.Errorf("DecompressLegacy(missing frame) error = %v, want %v", err, ErrTruncated)
	}
	// exception marker without exception bits
	if _, _, err := DecompressLegacy([]byte{1, 0, 0, 1, 0x07}); !errors.Is(err, ErrTruncated) {
		t.Errorf("DecompressLegacy(missing exception) error = %v, want %v", err, ErrTruncated)
	}
}

// TestLegacyHugeCount tests that a header claiming millions of frames over a
// short body fails without allocating for the claimed count
func TestLegacyHugeCount(t *testing.T) {
	inputs := [][]byte{
		{1, 0xff, 0xff, 0xff},
		{1, 0xff, 0xff, 0xff, 0x00, 0x00},
	}
	for _, in := range inputs {
		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)
		_, _, err := DecompressLegacy(in)
		runtime.ReadMemStats(&after)

		if !errors.Is(err, ErrTruncated) {
			t.Errorf("DecompressLegacy(% x) error = %v, want %v", in, err, ErrTruncated)
		}
		if allocated := after.TotalAlloc - before.TotalAlloc; allocated > 1<<20 {
			t.Errorf("DecompressLegacy(% x) allocated %d bytes", in, allocated)
		}
	}
}

// TestGID tests fingerprint GIDs against known values
func TestGID(t *testing.T) {
	if got := GID(1, fingerprint.Fingerprint{1, 2, 3}).String(); got != "b31acd74-46a5-5c5c-8f12-54dfef1cb6a8" {
		t.Errorf("GID = %s, want b31acd74-46a5-5c5c-8f12-54dfef1cb6a8", got)
	}
	if got := GID(1, nil).String(); got != "fe2f614b-f70a-5193-b385-a9b9c87fba8b" {
		t.Errorf("GID(empty) = %s, want fe2f614b-f70a-5193-b385-a9b9c87fba8b", got)
	}
	if GID(1, fingerprint.Fingerprint{1}) == GID(2, fingerprint.Fingerprint{1}) {
		t.Error("GID does not depend on the version")
	}
}
