package fingerprint

import (
	"math/bits"
	"math/rand/v2"
	"testing"
)

// TestPopCountEdges tests the all-zero and all-one words
func TestPopCountEdges(t *testing.T) {
	if got := PopCount32(0); got != 0 {
		t.Errorf("PopCount32(0) = %d, want 0", got)
	}
	if got := PopCount32(0xFFFFFFFF); got != 32 {
		t.Errorf("PopCount32(0xFFFFFFFF) = %d, want 32", got)
	}
	if got := PopCount64(0); got != 0 {
		t.Errorf("PopCount64(0) = %d, want 0", got)
	}
	if got := PopCount64(0xFFFFFFFFFFFFFFFF); got != 64 {
		t.Errorf("PopCount64(0xFFFFFFFFFFFFFFFF) = %d, want 64", got)
	}
}

// TestPopCount32Table tests the lookup table against math/bits for every 16-bit value
// and a spread of random words
func TestPopCount32Table(t *testing.T) {
	for x := uint32(0); x <= 0xFFFF; x++ {
		if got, want := PopCount32(x), bits.OnesCount32(x); got != want {
			t.Fatalf("PopCount32(%#x) = %d, want %d", x, got, want)
		}
		if got, want := PopCount32(x<<16), bits.OnesCount32(x<<16); got != want {
			t.Fatalf("PopCount32(%#x) = %d, want %d", x<<16, got, want)
		}
	}

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100000; i++ {
		x := rng.Uint32()
		if got, want := PopCount32(x), bits.OnesCount32(x); got != want {
			t.Fatalf("PopCount32(%#x) = %d, want %d", x, got, want)
		}
	}
}

// TestPopCount64SWAR tests the SWAR reduction against math/bits and against two table lookups
func TestPopCount64SWAR(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 100000; i++ {
		x := rng.Uint64()
		got := PopCount64(x)
		if want := bits.OnesCount64(x); got != want {
			t.Fatalf("PopCount64(%#x) = %d, want %d", x, got, want)
		}
		if table := PopCount32(uint32(x)) + PopCount32(uint32(x>>32)); got != table {
			t.Fatalf("PopCount64(%#x) = %d, table says %d", x, got, table)
		}
	}

	for shift := 0; shift < 64; shift++ {
		if got := PopCount64(1 << shift); got != 1 {
			t.Errorf("PopCount64(1<<%d) = %d, want 1", shift, got)
		}
	}
}
