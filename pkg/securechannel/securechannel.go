package securechannel

import (
	"crypto/tls"
	"crypto/x509"
	"io"
	"sync"

	"github.com/edge-gateway/messageproxy/pkg/certprovider"
	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
	"github.com/edge-gateway/messageproxy/pkg/muxchannel"
)

// SecureChannel overlays a TLS session on top of a muxchannel.Channel.
// Once Connect succeeds the TLS session is live; Read/Write only
// succeed after that. It may be reconnected across outer-transport
// losses (spec.md §4.4).
type SecureChannel struct {
	channel     *muxchannel.Channel
	certStorage string
	provider    certprovider.Provider
	keyLoader   certprovider.KeyLoader

	mu   sync.Mutex
	conn *tls.Conn
}

// New wraps channel in a SecureChannel that resolves its TLS identity
// from provider for the given certStorage, using keyLoader to
// dereference the PKCS#11-style key URL the provider returns.
func New(channel *muxchannel.Channel, provider certprovider.Provider, keyLoader certprovider.KeyLoader, certStorage string) *SecureChannel {
	return &SecureChannel{
		channel:     channel,
		certStorage: certStorage,
		provider:    provider,
		keyLoader:   keyLoader,
	}
}

// Connect performs the operational sequence from spec.md §4.4: confirm
// the underlying channel is live, build a fresh TLS server context
// that verifies the peer against the configured CA, load the cert
// chain and private key for certStorage, then accept the handshake
// over the channel's byte stream.
func (s *SecureChannel) Connect() error {
	if s.channel.Closed() {
		return gatewayerrors.New(gatewayerrors.KindClosed, "securechannel.Connect", "underlying channel is closed")
	}

	bundle, err := s.provider.GetBundle(s.certStorage)
	if err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "securechannel.Connect", err)
	}

	signer, err := s.keyLoader.LoadPrivateKey(bundle.KeyURL)
	if err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "securechannel.Connect", err)
	}

	rawChain := make([][]byte, len(bundle.CertChain))
	for i, cert := range bundle.CertChain {
		rawChain[i] = cert.Raw
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{
			{
				Certificate: rawChain,
				PrivateKey:  signer,
				Leaf:        bundle.CertChain[0],
			},
		},
		ClientAuth: tls.RequireAndVerifyClientCert,
		ClientCAs:  bundle.CAPool,
		MinVersion: tls.VersionTLS12,
	}

	conn := tls.Server(newChannelConn(s.channel, s.channel.Port()), tlsConfig)
	if err := conn.Handshake(); err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "securechannel.Connect", err)
	}

	if err := verifyPeer(conn.ConnectionState().PeerCertificates, bundle.CAPool); err != nil {
		_ = conn.Close()
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "securechannel.Connect", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	return nil
}

func verifyPeer(peerCerts []*x509.Certificate, caPool *x509.CertPool) error {
	if len(peerCerts) == 0 {
		return gatewayerrors.New(gatewayerrors.KindRuntime, "securechannel.verifyPeer", "no peer certificate presented")
	}
	opts := x509.VerifyOptions{
		Roots:     caPool,
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	_, err := peerCerts[0].Verify(opts)
	return err
}

// Read TLS-decrypts until len(buf) application bytes are available.
func (s *SecureChannel) Read(buf []byte) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return gatewayerrors.New(gatewayerrors.KindRuntime, "securechannel.Read", "not connected")
	}

	if _, err := io.ReadFull(conn, buf); err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "securechannel.Read", err)
	}
	return nil
}

// Write TLS-encrypts payload and forwards it to the underlying channel.
func (s *SecureChannel) Write(payload []byte) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return gatewayerrors.New(gatewayerrors.KindRuntime, "securechannel.Write", "not connected")
	}

	if _, err := conn.Write(payload); err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "securechannel.Write", err)
	}
	return nil
}

// Close sends a TLS shutdown then closes the underlying channel.
func (s *SecureChannel) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}

	return s.channel.Close()
}

// Port returns the logical port the underlying channel is bound to.
func (s *SecureChannel) Port() uint32 {
	return s.channel.Port()
}
