package domain

import "hash/fnv"

// Fingerprint is a deterministic 32-bit content hash of an analysis
// window. It drives change detection and keys the request cache.
type Fingerprint uint32

// FingerprintText hashes window text together with the category, so two
// categories analysing the same text never share a fingerprint.
func FingerprintText(category Category, text string) Fingerprint {
	h := fnv.New32a()
	h.Write([]byte(category))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return Fingerprint(h.Sum32())
}
