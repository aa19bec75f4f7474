package imagepipeline

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

const blobsDir = "blobs"

// mkExtractionDir creates a fresh, uniquely named temporary directory
// under storeDir for one image extraction (spec.md §4.9 step 1;
// naming grounded on the teacher's evidence-recorder use of
// github.com/google/uuid for artifact identifiers).
func mkExtractionDir(storeDir string) (string, error) {
	if err := os.MkdirAll(storeDir, 0o755); err != nil {
		return "", gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.mkExtractionDir", err)
	}
	dir := filepath.Join(storeDir, uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.mkExtractionDir", err)
	}
	return dir, nil
}

// unpackTar extracts srcTar (optionally gzip-compressed) into destDir,
// which must already exist. Path traversal outside destDir is
// rejected.
func unpackTar(srcTar, destDir string) error {
	f, err := os.Open(srcTar)
	if err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.unpackTar", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(srcTar, ".gz") || strings.HasSuffix(srcTar, ".tgz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return gatewayerrors.Wrap(gatewayerrors.KindInvalidArgument, "imagepipeline.unpackTar", err)
		}
		defer gz.Close()
		r = gz
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return gatewayerrors.Wrap(gatewayerrors.KindInvalidArgument, "imagepipeline.unpackTar", err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.unpackTar", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.unpackTar", err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode&0o777))
			if err != nil {
				return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.unpackTar", err)
			}
			_, copyErr := io.Copy(out, tr)
			closeErr := out.Close()
			if copyErr != nil {
				return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.unpackTar", copyErr)
			}
			if closeErr != nil {
				return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.unpackTar", closeErr)
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.unpackTar", err)
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.unpackTar", err)
			}
		default:
			// Skip device nodes and other special entries; the gateway
			// only relays regular files and directories.
		}
	}
}

// safeJoin resolves name under base, rejecting any entry whose
// resolved path escapes base (tar path traversal, "zip-slip").
func safeJoin(base, name string) (string, error) {
	target := filepath.Join(base, name)
	if target != base && !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return "", gatewayerrors.New(gatewayerrors.KindInvalidArgument, "imagepipeline.safeJoin", "tar entry escapes extraction directory: "+name)
	}
	return target, nil
}

// blobPath returns the on-disk path of a blob referenced by digest
// within an extracted image directory.
func blobPath(imageDir, digest string) (string, error) {
	algorithm, hex, err := ParseDigest(digest)
	if err != nil {
		return "", err
	}
	return filepath.Join(imageDir, blobsDir, algorithm, hex), nil
}
