package transport

import (
	"os"
	"sync"

	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// VChanConfig identifies an inter-domain channel: a numeric domain
// identifier plus the RX/TX file-like endpoint paths bound to it
// (named pipes or equivalent, provided by an external collaborator —
// this package only opens and does blocking I/O against them).
type VChanConfig struct {
	Domain int
	RXPath string
	TXPath string
}

// VChan is a Transport backed by two file-like endpoints, the shape
// used for co-located virtual inter-domain channels (spec.md §6).
type VChan struct {
	cfg VChanConfig

	mu     sync.Mutex
	rx     *os.File
	tx     *os.File
	closed bool
}

// NewVChan returns a VChan for the given endpoint configuration.
func NewVChan(cfg VChanConfig) *VChan {
	return &VChan{cfg: cfg}
}

// Connect opens the RX and TX endpoints. It is idempotent.
func (v *VChan) Connect() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return gatewayerrors.New(gatewayerrors.KindClosed, "transport.VChan.Connect", "transport closed")
	}
	if v.rx != nil && v.tx != nil {
		return nil
	}

	rx, err := os.OpenFile(v.cfg.RXPath, os.O_RDONLY, 0)
	if err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "transport.VChan.Connect", err)
	}

	tx, err := os.OpenFile(v.cfg.TXPath, os.O_WRONLY, 0)
	if err != nil {
		_ = rx.Close()
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "transport.VChan.Connect", err)
	}

	v.rx = rx
	v.tx = tx

	return nil
}

// Read performs a blocking read on the RX endpoint.
func (v *VChan) Read(p []byte) (int, error) {
	v.mu.Lock()
	rx := v.rx
	v.mu.Unlock()

	if rx == nil {
		return 0, gatewayerrors.New(gatewayerrors.KindClosed, "transport.VChan.Read", "not connected")
	}

	n, err := rx.Read(p)
	if err != nil {
		return n, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "transport.VChan.Read", err)
	}
	return n, nil
}

// Write performs a blocking write on the TX endpoint.
func (v *VChan) Write(p []byte) (int, error) {
	v.mu.Lock()
	tx := v.tx
	v.mu.Unlock()

	if tx == nil {
		return 0, gatewayerrors.New(gatewayerrors.KindClosed, "transport.VChan.Write", "not connected")
	}

	n, err := tx.Write(p)
	if err != nil {
		return n, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "transport.VChan.Write", err)
	}
	return n, nil
}

// Close closes both endpoints.
func (v *VChan) Close() error {
	v.mu.Lock()
	v.closed = true
	rx, tx := v.rx, v.tx
	v.rx, v.tx = nil, nil
	v.mu.Unlock()

	var err error
	if rx != nil {
		err = rx.Close()
	}
	if tx != nil {
		if txErr := tx.Close(); err == nil {
			err = txErr
		}
	}
	return err
}
