package fingerprint

import (
	"testing"
)

func TestSimhash(t *testing.T) {
	tests := []struct {
		name string
		fp   Fingerprint
		want uint32
	}{
		{"empty", nil, 0},
		{"all ones", Fingerprint{0xFFFFFFFF, 0xFFFFFFFF}, 0xFFFFFFFF},
		{"majority", Fingerprint{0x1, 0x1, 0x0}, 0x1},
		{"tie clears bit", Fingerprint{0x1, 0x0}, 0x0},
		{"per bit", Fingerprint{0x3, 0x1, 0x80000001}, 0x1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Simhash(tt.fp); got != tt.want {
				t.Errorf("Simhash = %#x, want %#x", got, tt.want)
			}
		})
	}
}

// TestSimhashStableUnderSparseNoise tests that a few corrupted frames keep the simhash
func TestSimhashStableUnderSparseNoise(t *testing.T) {
	fp := randomFingerprint(1000, 30)
	base := Simhash(fp)

	noisy := append(Fingerprint(nil), fp...)
	for i := 0; i < len(noisy); i += 100 {
		noisy[i] = ^noisy[i]
	}

	if got := Simhash(noisy); PopCount32(got^base) > 8 {
		t.Errorf("Simhash moved %d bits under sparse noise", PopCount32(got^base))
	}
}

func TestShingledSimhashes(t *testing.T) {
	fp := randomFingerprint(300, 31)

	hashes := ShingledSimhashes(fp, 120, 90)
	if len(hashes) != 3 {
		t.Fatalf("Got %d shingles, want 3", len(hashes))
	}
	for i, h := range hashes {
		if want := Simhash(fp[i*90 : i*90+120]); h != want {
			t.Errorf("Shingle %d = %#x, want %#x", i, h, want)
		}
	}

	short := fp[:50]
	if got := ShingledSimhashes(short, 120, 90); len(got) != 1 || got[0] != Simhash(short) {
		t.Errorf("Short fingerprint shingles = %v, want [%#x]", got, Simhash(short))
	}

	if got := ShingledSimhashes(nil, 120, 90); got != nil {
		t.Errorf("Empty fingerprint shingles = %v, want nil", got)
	}
	if got := ShingledSimhashes(fp, 0, 90); got != nil {
		t.Errorf("Zero size shingles = %v, want nil", got)
	}
	if got := ShingledSimhashes(fp, 120, 0); got != nil {
		t.Errorf("Zero step shingles = %v, want nil", got)
	}
}

func TestSignConversion(t *testing.T) {
	signed := []int32{-1, 0, 1, -2147483648, 2147483647}

	fp := ToUnsigned(signed)
	want := Fingerprint{0xFFFFFFFF, 0, 1, 0x80000000, 0x7FFFFFFF}
	for i := range want {
		if fp[i] != want[i] {
			t.Errorf("ToUnsigned[%d] = %#x, want %#x", i, fp[i], want[i])
		}
	}

	back := ToSigned(fp)
	for i := range signed {
		if back[i] != signed[i] {
			t.Errorf("ToSigned[%d] = %d, want %d", i, back[i], signed[i])
		}
	}
}
