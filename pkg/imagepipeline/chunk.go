package imagepipeline

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// walkAndChunk walks every regular file under root, in stable sorted
// order, producing an ImageFile and its ImageContent parts (spec.md
// §4.9 step 5). Parts are 1024 bytes, 1-based and strictly ascending
// per file; the last part of a file may be short.
func walkAndChunk(requestID uint64, root string) ([]ImageFile, []ImageContent, error) {
	var relPaths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPaths = append(relPaths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, nil, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.walkAndChunk", err)
	}
	sort.Strings(relPaths)

	var files []ImageFile
	var contents []ImageContent

	for _, rel := range relPaths {
		full := filepath.Join(root, filepath.FromSlash(rel))

		info, err := os.Stat(full)
		if err != nil {
			return nil, nil, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.walkAndChunk", err)
		}

		sum, err := HashFile(full)
		if err != nil {
			return nil, nil, err
		}

		files = append(files, ImageFile{RelativePath: rel, SHA256: sum, Size: info.Size()})

		parts, err := chunkFile(requestID, rel, full, info.Size())
		if err != nil {
			return nil, nil, err
		}
		contents = append(contents, parts...)
	}

	return files, contents, nil
}

func chunkFile(requestID uint64, relPath, fullPath string, size int64) ([]ImageContent, error) {
	partsCount := int((size + ChunkSize - 1) / ChunkSize)
	if partsCount == 0 {
		partsCount = 1 // a zero-length file still yields one empty part
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.chunkFile", err)
	}
	defer f.Close()

	parts := make([]ImageContent, 0, partsCount)
	buf := make([]byte, ChunkSize)
	for part := 1; part <= partsCount; part++ {
		n, err := io.ReadFull(f, buf)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return nil, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "imagepipeline.chunkFile", err)
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		parts = append(parts, ImageContent{
			RequestID:    requestID,
			RelativePath: relPath,
			PartsCount:   partsCount,
			Part:         part,
			Data:         data,
		})
	}

	return parts, nil
}
