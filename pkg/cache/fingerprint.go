package cache

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/minio/highwayhash"

	"github.com/l3aro/go-nll-facts/pkg/facts"
)

// hashKey is fixed so fingerprints are stable across runs and machines.
var hashKey = []byte("nll-facts-row-cache-fingerprint!")

// Fingerprint identifies the current contents of a crate's fact directory
// from the names, sizes and modification times of its relation files.
// salt separates entries computed under different settings.
func Fingerprint(factsDir, salt string) (string, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return "", err
	}

	fns, err := facts.FunctionDirs(factsDir)
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", factsDir, err)
	}
	sort.Strings(fns)

	fmt.Fprintf(h, "salt=%s\n", salt)
	for _, fn := range fns {
		fmt.Fprintf(h, "fn=%s\n", filepath.Base(fn))
		for _, r := range facts.Relations() {
			info, err := os.Stat(filepath.Join(fn, r.FileName()))
			if err != nil {
				fmt.Fprintf(h, "%s=absent\n", r)
				continue
			}
			fmt.Fprintf(h, "%s=%d:%d\n", r, info.Size(), info.ModTime().UnixNano())
		}
	}

	var sum [8]byte
	return hex.EncodeToString(h.Sum(sum[:0])), nil
}
