package imagepipeline

// ChunkSize is the fixed part size used when chunking files for
// delivery (spec.md §4.9).
const ChunkSize = 1024

// ImageFile describes one regular file inside an unpacked image.
type ImageFile struct {
	RelativePath string
	SHA256       string
	Size         int64
}

// ImageContent is one 1024-byte-or-shorter part of a file, ready to be
// emitted as an image_content frame.
type ImageContent struct {
	RequestID    uint64
	RelativePath string
	PartsCount   int
	Part         int
	Data         []byte
}

// ContentError is carried on a failed image_content_info response.
type ContentError struct {
	AOSCode int
	Message string
}

// ContentInfo is the result of successfully unpacking and chunking an
// image (spec.md §3). Err is set instead of Files/Contents on failure.
type ContentInfo struct {
	RequestID uint64
	Files     []ImageFile
	Contents  []ImageContent
	Err       *ContentError
}
