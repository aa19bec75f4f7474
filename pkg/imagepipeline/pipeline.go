package imagepipeline

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// aosCodeUnpackFailed is the error code carried on a failed
// image_content_info when unpacking or validation fails. The upstream
// aos_code taxonomy itself belongs to the external protobuf schema
// (spec.md §1); this gateway only needs a single generic failure code
// to populate it with.
const aosCodeUnpackFailed = 1

// Pipeline unpacks and chunks downloaded service images under one
// store directory.
type Pipeline struct {
	storeDir string
	logger   *slog.Logger
}

// New constructs a Pipeline rooted at storeDir, created if missing.
func New(storeDir string, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(storeDir, 0o755); err != nil {
		return nil, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.New", err)
	}
	return &Pipeline{storeDir: storeDir, logger: logger.With("component", "imagepipeline")}, nil
}

// Process runs the full unpack/validate/rewrite/chunk sequence
// (spec.md §4.9) over tarPath and returns a ContentInfo. Errors never
// surface directly to the caller; they are folded into
// ContentInfo.Err so the CM Endpoint Runner can always emit exactly
// one image_content_info in response to a request (spec.md §8).
func (p *Pipeline) Process(requestID uint64, tarPath string) *ContentInfo {
	info, err := p.process(requestID, tarPath)
	if err != nil {
		p.logger.Warn("image processing failed", "request_id", requestID, "error", err)
		return &ContentInfo{
			RequestID: requestID,
			Err:       &ContentError{AOSCode: aosCodeUnpackFailed, Message: err.Error()},
		}
	}
	return info
}

func (p *Pipeline) process(requestID uint64, tarPath string) (*ContentInfo, error) {
	imageDir, err := mkExtractionDir(p.storeDir)
	if err != nil {
		return nil, err
	}

	if err := unpackTar(tarPath, imageDir); err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(imageDir, manifestFileName)
	manifest, err := readManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	if err := manifest.validate(); err != nil {
		return nil, err
	}

	rootFSPath, err := blobPath(imageDir, manifest.Layers[0].Digest)
	if err != nil {
		return nil, err
	}

	newDigest, err := p.prepareRootFS(imageDir, rootFSPath)
	if err != nil {
		return nil, err
	}
	if err := manifest.rewriteRootFSDigest(manifestPath, newDigest); err != nil {
		return nil, err
	}

	rewrittenRootFS, err := blobPath(imageDir, newDigest)
	if err != nil {
		return nil, err
	}

	files, contents, err := walkAndChunk(requestID, imageDir)
	_ = rewrittenRootFS // documents that walkAndChunk covers the whole image tree, rootfs included
	if err != nil {
		return nil, err
	}

	return &ContentInfo{RequestID: requestID, Files: files, Contents: contents}, nil
}

// prepareRootFS extracts the first layer's tarball into a temporary
// root-fs directory, hashes it, and renames it to its digest hex
// (spec.md §4.9 step 4).
func (p *Pipeline) prepareRootFS(imageDir, rootFSTarPath string) (string, error) {
	tmpRootFS := filepath.Join(imageDir, "tmprootfs")
	if err := os.MkdirAll(tmpRootFS, 0o755); err != nil {
		return "", gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.prepareRootFS", err)
	}

	if err := unpackTar(rootFSTarPath, tmpRootFS); err != nil {
		return "", err
	}
	if err := os.RemoveAll(rootFSTarPath); err != nil {
		return "", gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.prepareRootFS", err)
	}

	digest, err := HashDir(tmpRootFS)
	if err != nil {
		return "", err
	}
	if err := ValidateDigest(digest); err != nil {
		return "", err
	}

	_, hex, err := ParseDigest(digest)
	if err != nil {
		return "", err
	}

	finalPath := filepath.Join(filepath.Dir(rootFSTarPath), hex)
	if err := os.Rename(tmpRootFS, finalPath); err != nil {
		return "", gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.prepareRootFS", err)
	}

	return digest, nil
}
