package imagepipeline

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// digestHexLen is the recognized digest algorithm allow-list, mapping
// each algorithm to its hex length (spec.md §12): only sha256 digests
// are accepted, matching the "algorithm:hex" convention used
// throughout the manifest.
var digestHexLen = map[string]int{
	"sha256": 64,
}

// ValidateDigest checks digest has the syntax "algorithm:hex" with a
// recognized algorithm and matching hex length (spec.md §4.9 step 3).
func ValidateDigest(digest string) error {
	algorithm, hex, err := splitDigest(digest)
	if err != nil {
		return err
	}
	wantLen, ok := digestHexLen[algorithm]
	if !ok {
		return gatewayerrors.New(gatewayerrors.KindInvalidArgument, "imagepipeline.ValidateDigest", "unrecognized digest algorithm: "+algorithm)
	}
	if len(hex) != wantLen || !isHex(hex) {
		return gatewayerrors.New(gatewayerrors.KindInvalidArgument, "imagepipeline.ValidateDigest", "malformed digest hex for "+algorithm)
	}
	return nil
}

// ParseDigest splits a "algorithm:hex" digest into its parts,
// validating it first.
func ParseDigest(digest string) (algorithm, hex string, err error) {
	if err := ValidateDigest(digest); err != nil {
		return "", "", err
	}
	return splitDigest(digest)
}

func splitDigest(digest string) (algorithm, hex string, err error) {
	i := strings.IndexByte(digest, ':')
	if i < 0 {
		return "", "", gatewayerrors.New(gatewayerrors.KindInvalidArgument, "imagepipeline.splitDigest", "digest missing algorithm separator")
	}
	return digest[:i], digest[i+1:], nil
}

func isHex(s string) bool {
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return len(s) > 0
}

// HashFile returns the "sha256:hex" digest of a file's full contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.HashFile", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.HashFile", err)
	}
	return "sha256:" + fmt.Sprintf("%x", h.Sum(nil)), nil
}

// HashDir computes a content-addressed digest over a directory tree
// (spec.md §9): entries are visited in stable sorted order and folded
// as (name, mode, size, file-content-hash) into a running hash, so the
// same tree always yields the same digest regardless of traversal
// order on disk.
func HashDir(root string) (string, error) {
	var entries []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return "", gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.HashDir", err)
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, rel := range entries {
		full := filepath.Join(root, filepath.FromSlash(rel))
		info, err := os.Lstat(full)
		if err != nil {
			return "", gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.HashDir", err)
		}

		contentHash := ""
		if info.Mode().IsRegular() {
			sum, err := hashFileRaw(full)
			if err != nil {
				return "", err
			}
			contentHash = sum
		}

		fmt.Fprintf(h, "%s\x00%o\x00%d\x00%s\x00", rel, info.Mode().Perm(), info.Size(), contentHash)
	}

	return "sha256:" + fmt.Sprintf("%x", h.Sum(nil)), nil
}

func hashFileRaw(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.hashFileRaw", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.hashFileRaw", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
