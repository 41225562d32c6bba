package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash computes a SHA-256 hash of the input data as a 64-character hex
// string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// BookKey derives the cache key for a rendered book. The key covers every
// input that shapes the document: the source text, the front-matter
// configuration, and the generating tool's version.
func BookKey(source string, config any, version string) string {
	cfgData, _ := json.Marshal(config)
	h := sha256.New()
	h.Write([]byte(source))
	h.Write(cfgData)
	h.Write([]byte(version))
	return fmt.Sprintf("book:%s", hex.EncodeToString(h.Sum(nil)))
}
