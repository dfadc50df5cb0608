package codec

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/fingerprint"
)

// GIDNamespace is the UUID namespace of fingerprint GIDs.
var GIDNamespace = uuid.MustParse("df7bef46-416e-4c57-a877-39b54325ef03")

// GID returns the stable identifier of a fingerprint: a name based (SHA-1)
// UUID over the little-endian version followed by the little-endian hashes.
// Identical fingerprints always share a GID.
func GID(version uint32, hashes fingerprint.Fingerprint) uuid.UUID {
	data := make([]byte, 4+4*len(hashes))
	binary.LittleEndian.PutUint32(data, version)
	for i, h := range hashes {
		binary.LittleEndian.PutUint32(data[4+4*i:], h)
	}
	return uuid.NewSHA1(GIDNamespace, data)
}
