package fingerprint

// SWAR masks, see http://en.wikipedia.org/wiki/Hamming_weight
const (
	m1  = 0x5555555555555555 // 0101...
	m2  = 0x3333333333333333 // 00110011..
	m4  = 0x0f0f0f0f0f0f0f0f // 4 zeros, 4 ones ...
	h01 = 0x0101010101010101 // sum of 256 to the power of 0,1,2,3...
)

// popcountTable8 holds the number of set bits of every byte value.
var popcountTable8 = func() (t [256]uint8) {
	for i := range t {
		t[i] = t[i/2] + uint8(i&1)
	}
	return t
}()

// PopCount32 returns the number of set bits in x using a byte lookup table.
func PopCount32(x uint32) int {
	return int(popcountTable8[x&0xff]) +
		int(popcountTable8[(x>>8)&0xff]) +
		int(popcountTable8[(x>>16)&0xff]) +
		int(popcountTable8[x>>24])
}

// PopCount64 returns the number of set bits in x.
func PopCount64(x uint64) int {
	x -= (x >> 1) & m1             // count of each 2 bits into those 2 bits
	x = (x & m2) + ((x >> 2) & m2) // count of each 4 bits into those 4 bits
	x = (x + (x >> 4)) & m4        // count of each 8 bits into those 8 bits
	return int((x * h01) >> 56)    // left 8 bits of x + (x<<8) + (x<<16) + ...
}
