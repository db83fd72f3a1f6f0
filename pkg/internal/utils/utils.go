package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// GenerateUniqueHash returns a random hex identifier used for component IDs.
func GenerateUniqueHash() string {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		panic("random number generator failed")
	}
	hashInput := append([]byte(fmt.Sprintf("%d", time.Now().UnixNano())), randomBytes...)
	hash := sha256.Sum256(hashInput)
	return hex.EncodeToString(hash[:])
}

// Fingerprint returns a stable SHA-256 hex digest of the printed form of data.
func Fingerprint[T any](data T) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%v", data)))
	return hex.EncodeToString(hash[:])
}

// Hash64 returns the FNV-64a hash of s. It is stable across runs and platforms.
func Hash64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// SortedUnique returns the distinct values of in in ascending order. The input is not modified.
func SortedUnique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
