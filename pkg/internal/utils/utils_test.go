package utils_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/joeydtaylor/tremor/pkg/internal/utils"
)

func TestGenerateUniqueHash(t *testing.T) {
	a := utils.GenerateUniqueHash()
	b := utils.GenerateUniqueHash()
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == b {
		t.Fatalf("expected distinct hashes")
	}
}

func TestFingerprintStable(t *testing.T) {
	if utils.Fingerprint([]int{1, 2}) != utils.Fingerprint([]int{1, 2}) {
		t.Fatalf("fingerprint should be deterministic")
	}
	if utils.Fingerprint("a") == utils.Fingerprint("b") {
		t.Fatalf("fingerprint collision on trivial input")
	}
}

func TestHash64(t *testing.T) {
	// FNV-64a offset basis for the empty string.
	if got := utils.Hash64(""); got != 0xcbf29ce484222325 {
		t.Fatalf("unexpected empty hash %x", got)
	}
	if utils.Hash64("00000001.mseed") == utils.Hash64("00000002.mseed") {
		t.Fatalf("expected distinct hashes")
	}
}

func TestSortedUnique(t *testing.T) {
	in := []string{"c", "a", "b", "a", "c"}
	got := utils.SortedUnique(in)
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected result %v", got)
	}
	if in[0] != "c" {
		t.Fatalf("input was modified")
	}
}

func TestEnsureParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "file.csv")
	if err := utils.EnsureParentDir(path); err != nil {
		t.Fatalf("EnsureParentDir: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("expected directory: %v", err)
	}
}
