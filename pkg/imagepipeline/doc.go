// Package imagepipeline implements the image unpacker and chunker
// (spec.md §4.9): extracting a downloaded service tarball, validating
// and rewriting its manifest's root-fs layer digest, and walking the
// unpacked tree into ImageFile/ImageContent records ready for the CM
// Endpoint Runner to emit as image_content_info/image_content frames.
package imagepipeline
