package smwire

import (
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// Field numbers of the SMOutgoingMessages oneof. Only one is ever set
// per message; a message carrying none of the recognized numbers is
// OutgoingOther and forwarded to the inner CM client unexamined.
const (
	fieldClockSyncRequest  = 1
	fieldNodeConfigStatus  = 2
	fieldAlert             = 3
	fieldImageContentReq   = 4
)

// Field numbers within an ImageContentRequest submessage.
const (
	fieldICRURL         = 1
	fieldICRRequestID   = 2
	fieldICRContentType = 3
)

// Field numbers of the SMIncomingMessages oneof, written by the
// gateway back toward SM.
const (
	fieldClockSync        = 1
	fieldImageContentInfo = 2
	fieldImageContent     = 3
)

// google.protobuf.Timestamp field numbers.
const (
	fieldTimestampSeconds = 1
	fieldTimestampNanos   = 2
)

// OutgoingKind identifies which oneof case an SMOutgoingMessages frame
// carries, to the resolution the gateway needs and no further
// (spec.md §1 Non-goals).
type OutgoingKind int

const (
	OutgoingOther OutgoingKind = iota
	OutgoingClockSyncRequest
	OutgoingNodeConfigStatus
	OutgoingAlert
	OutgoingImageContentRequest
)

// ImageContentRequest is the decoded payload of an
// OutgoingImageContentRequest message.
type ImageContentRequest struct {
	URL         string
	RequestID   uint64
	ContentType string
}

// Outgoing is the result of peeking an SMOutgoingMessages frame: the
// kind, the raw bytes as received (always preserved for passthrough),
// and the decoded ImageContentRequest when Kind is
// OutgoingImageContentRequest.
type Outgoing struct {
	Kind    OutgoingKind
	Raw     []byte
	ImageContentRequest *ImageContentRequest
}

// HasClockSyncRequest reports whether data carries a clock-sync
// request (spec.md's has_clock_sync_request peek predicate).
func HasClockSyncRequest(data []byte) bool {
	kind, _ := peekOutgoingKind(data)
	return kind == OutgoingClockSyncRequest
}

// HasImageContentRequest reports whether data carries an image-content
// request (spec.md's has_image_content_request peek predicate).
func HasImageContentRequest(data []byte) bool {
	kind, _ := peekOutgoingKind(data)
	return kind == OutgoingImageContentRequest
}

// IsNodeConfigStatus reports whether data is an outgoing
// NodeConfigStatus message, the single kind the inner CM client's
// reconnect cache retains (spec.md §4.5).
func IsNodeConfigStatus(data []byte) bool {
	kind, _ := peekOutgoingKind(data)
	return kind == OutgoingNodeConfigStatus
}

// ParseOutgoing decodes data into an Outgoing, resolving the
// ImageContentRequest submessage when present.
func ParseOutgoing(data []byte) (Outgoing, error) {
	kind, fieldBytes := peekOutgoingKind(data)
	out := Outgoing{Kind: kind, Raw: data}

	if kind == OutgoingImageContentRequest {
		req, err := parseImageContentRequest(fieldBytes)
		if err != nil {
			return Outgoing{}, gatewayerrors.Wrap(gatewayerrors.KindInvalidArgument, "smwire.ParseOutgoing", err)
		}
		out.ImageContentRequest = &req
	}

	return out, nil
}

// peekOutgoingKind walks the top-level fields of an SMOutgoingMessages
// frame and returns whichever recognized oneof field number is
// present, along with that field's raw bytes.
func peekOutgoingKind(data []byte) (OutgoingKind, []byte) {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return OutgoingOther, nil
		}
		data = data[n:]

		valLen := protowire.ConsumeFieldValue(num, typ, data)
		if valLen < 0 {
			return OutgoingOther, nil
		}
		fieldBytes := data[:valLen]
		data = data[valLen:]

		switch num {
		case fieldClockSyncRequest:
			return OutgoingClockSyncRequest, fieldBytes
		case fieldNodeConfigStatus:
			return OutgoingNodeConfigStatus, fieldBytes
		case fieldAlert:
			return OutgoingAlert, fieldBytes
		case fieldImageContentReq:
			return OutgoingImageContentRequest, fieldBytes
		}
	}
	return OutgoingOther, nil
}

func parseImageContentRequest(fieldBytes []byte) (ImageContentRequest, error) {
	msg, n := protowire.ConsumeBytes(fieldBytes)
	if n < 0 {
		return ImageContentRequest{}, gatewayerrors.New(gatewayerrors.KindInvalidArgument, "smwire.parseImageContentRequest", "truncated submessage")
	}

	var req ImageContentRequest
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return ImageContentRequest{}, gatewayerrors.New(gatewayerrors.KindInvalidArgument, "smwire.parseImageContentRequest", "malformed tag")
		}
		msg = msg[n:]

		valLen := protowire.ConsumeFieldValue(num, typ, msg)
		if valLen < 0 {
			return ImageContentRequest{}, gatewayerrors.New(gatewayerrors.KindInvalidArgument, "smwire.parseImageContentRequest", "malformed field value")
		}
		fieldBytes := msg[:valLen]
		msg = msg[valLen:]

		switch num {
		case fieldICRURL:
			s, _ := protowire.ConsumeString(fieldBytes)
			req.URL = s
		case fieldICRRequestID:
			req.RequestID, _ = protowire.ConsumeVarint(fieldBytes)
		case fieldICRContentType:
			s, _ := protowire.ConsumeString(fieldBytes)
			req.ContentType = s
		}
	}
	return req, nil
}

// BuildClockSyncRequest encodes an outgoing clock-sync request, an
// empty oneof case.
func BuildClockSyncRequest() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldClockSyncRequest, protowire.BytesType)
	b = protowire.AppendBytes(b, nil)
	return b
}

// BuildClockSyncResponse encodes an SMIncomingMessages clock-sync
// reply carrying t as a google.protobuf.Timestamp.
func BuildClockSyncResponse(t time.Time) []byte {
	var ts []byte
	ts = protowire.AppendTag(ts, fieldTimestampSeconds, protowire.VarintType)
	ts = protowire.AppendVarint(ts, uint64(t.Unix()))
	ts = protowire.AppendTag(ts, fieldTimestampNanos, protowire.VarintType)
	ts = protowire.AppendVarint(ts, uint64(t.Nanosecond()))

	var b []byte
	b = protowire.AppendTag(b, fieldClockSync, protowire.BytesType)
	b = protowire.AppendBytes(b, ts)
	return b
}

// BuildAlert encodes an outgoing alert, an opaque { code, message } pair
// the gateway never interprets beyond forwarding it to the inner CM
// client (spec.md's Non-goals: no alert schema interpretation).
func BuildAlert(code uint64, message string) []byte {
	var alert []byte
	alert = protowire.AppendTag(alert, 1, protowire.VarintType)
	alert = protowire.AppendVarint(alert, code)
	alert = protowire.AppendTag(alert, 2, protowire.BytesType)
	alert = protowire.AppendString(alert, message)

	var b []byte
	b = protowire.AppendTag(b, fieldAlert, protowire.BytesType)
	b = protowire.AppendBytes(b, alert)
	return b
}

// BuildImageContentInfo encodes an SMIncomingMessages image-content-
// info reply carrying the already-serialized submessage payload.
func BuildImageContentInfo(payload []byte) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldImageContentInfo, protowire.BytesType)
	b = protowire.AppendBytes(b, payload)
	return b
}

// BuildImageContent encodes an SMIncomingMessages image-content chunk
// reply carrying the already-serialized submessage payload.
func BuildImageContent(payload []byte) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldImageContent, protowire.BytesType)
	b = protowire.AppendBytes(b, payload)
	return b
}
