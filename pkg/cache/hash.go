package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey derives a namespaced cache key from a stage prefix and the key
// parts. Parts are JSON-encoded before hashing so option structs and graph
// hashes participate in the key without manual string assembly. The format
// is prefix:hex(sha256(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes the SHA-256 hash of data as a 64-character hex string. The
// pipeline content-addresses compositions with it: a graph's canonical JSON
// hashes to the same key no matter which patch file produced it.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
