package explorer

import (
	"reach/core/explorer/configuration"
	"reach/core/explorer/fingerprint"
)

// fingerprintHash is the visited-set key: the SHA-256 digest of a
// configuration's canonical fingerprint, grounded on the teacher's
// buffer-pooled determinism.Hash. Hashing rather than storing the raw
// fingerprint string bounds the memory the visited set needs on deep or
// wide explorations.
func fingerprintHash(c *configuration.Configuration) string {
	return fingerprint.Hash(c.Fingerprint())
}
