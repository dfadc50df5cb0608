package fingerprint

// Simhash folds fp into one 32-bit locality sensitive hash: bit b is set when
// more sub-fingerprints have bit b set than clear. Fingerprints of the same
// recording tend to share a simhash. An empty fp hashes to 0.
func Simhash(fp Fingerprint) uint32 {
	var votes [32]int
	for _, x := range fp {
		for bit := range votes {
			if x&(1<<bit) != 0 {
				votes[bit]++
			} else {
				votes[bit]--
			}
		}
	}

	var h uint32
	for bit, v := range votes {
		if v > 0 {
			h |= 1 << bit
		}
	}
	return h
}

// ShingledSimhashes returns the simhash of every window of size
// sub-fingerprints, starting a new window each step frames. A fingerprint
// shorter than one window yields the simhash of the whole fingerprint.
func ShingledSimhashes(fp Fingerprint, size, step int) []uint32 {
	if size <= 0 || step <= 0 || len(fp) == 0 {
		return nil
	}
	if len(fp) <= size {
		return []uint32{Simhash(fp)}
	}

	hashes := make([]uint32, 0, (len(fp)-size)/step+1)
	for i := 0; i+size <= len(fp); i += step {
		hashes = append(hashes, Simhash(fp[i:i+size]))
	}
	return hashes
}
