package innerframe

import (
	"github.com/edge-gateway/messageproxy/pkg/framing"
	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// ReadWriter is the exact-fill byte-stream contract both
// muxchannel.Channel and securechannel.SecureChannel satisfy.
type ReadWriter interface {
	Read(buf []byte) error
	Write(payload []byte) error
}

// ReadMessage blocks for one InnerHeader-delimited message from rw.
func ReadMessage(rw ReadWriter) ([]byte, error) {
	header := make([]byte, framing.InnerHeaderSize)
	if err := rw.Read(header); err != nil {
		return nil, err
	}

	ih, err := framing.ParseInner(header)
	if err != nil {
		return nil, gatewayerrors.Wrap(gatewayerrors.KindInvalidArgument, "innerframe.ReadMessage", err)
	}

	if ih.DataSize == 0 {
		return nil, nil
	}

	payload := make([]byte, ih.DataSize)
	if err := rw.Read(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteMessage prepends an InnerHeader to payload and writes both
// through rw.
func WriteMessage(rw ReadWriter, payload []byte) error {
	if err := rw.Write(framing.BuildInner(uint32(len(payload)))); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	return rw.Write(payload)
}
