package smwire

import "google.golang.org/protobuf/encoding/protowire"

// Field numbers within an ImageContentInfo message.
const (
	fieldICIRequestID  = 1
	fieldICIImageFiles = 2
	fieldICIError      = 3
)

// Field numbers within an ImageFile entry.
const (
	fieldIFRelativePath = 1
	fieldIFSHA256       = 2
	fieldIFSize         = 3
)

// Field numbers within a ContentError.
const (
	fieldCEAOSCode = 1
	fieldCEMessage = 2
)

// Field numbers within an ImageContent message.
const (
	fieldICRequestID    = 1
	fieldICRelativePath = 2
	fieldICPartsCount   = 3
	fieldICPart         = 4
	fieldICData         = 5
)

// ImageFileEntry is one file record inside an image_content_info
// message (spec.md §3 ContentInfo.image_files).
type ImageFileEntry struct {
	RelativePath string
	SHA256       string
	Size         int64
}

func appendTagString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendTagVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func encodeImageFile(f ImageFileEntry) []byte {
	var b []byte
	b = appendTagString(b, fieldIFRelativePath, f.RelativePath)
	b = appendTagString(b, fieldIFSHA256, f.SHA256)
	b = appendTagVarint(b, fieldIFSize, uint64(f.Size))
	return b
}

// BuildContentInfoSuccess encodes a successful ImageContentInfo
// submessage payload (before being wrapped by BuildImageContentInfo).
func BuildContentInfoSuccess(requestID uint64, files []ImageFileEntry) []byte {
	var b []byte
	b = appendTagVarint(b, fieldICIRequestID, requestID)
	for _, f := range files {
		b = protowire.AppendTag(b, fieldICIImageFiles, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeImageFile(f))
	}
	return b
}

// BuildContentInfoFailure encodes a failed ImageContentInfo submessage
// payload carrying only { request_id, error{aos_code, message} }
// (spec.md §4.9 "Error handling during download/unpack").
func BuildContentInfoFailure(requestID uint64, aosCode int, message string) []byte {
	var errMsg []byte
	errMsg = appendTagVarint(errMsg, fieldCEAOSCode, uint64(int64(aosCode)))
	errMsg = appendTagString(errMsg, fieldCEMessage, message)

	var b []byte
	b = appendTagVarint(b, fieldICIRequestID, requestID)
	b = protowire.AppendTag(b, fieldICIError, protowire.BytesType)
	b = protowire.AppendBytes(b, errMsg)
	return b
}

// BuildImageContentPart encodes one ImageContent chunk submessage
// payload (before being wrapped by BuildImageContent).
func BuildImageContentPart(requestID uint64, relativePath string, partsCount, part int, data []byte) []byte {
	var b []byte
	b = appendTagVarint(b, fieldICRequestID, requestID)
	b = appendTagString(b, fieldICRelativePath, relativePath)
	b = appendTagVarint(b, fieldICPartsCount, uint64(partsCount))
	b = appendTagVarint(b, fieldICPart, uint64(part))
	b = protowire.AppendTag(b, fieldICData, protowire.BytesType)
	b = protowire.AppendBytes(b, data)
	return b
}
