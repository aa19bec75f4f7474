package innerclient

import (
	"crypto/tls"
	"crypto/x509"

	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/edge-gateway/messageproxy/pkg/certprovider"
	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// CredentialSource produces gRPC transport credentials on demand. The
// client tries each source in order at the start of every connect
// attempt, falling through to the next on error, mirroring
// original_source's ordered credential list (cmclient.cpp,
// publicnodeclient.cpp try mTLS then fall back where configured).
type CredentialSource interface {
	Name() string
	TransportCredentials() (credentials.TransportCredentials, error)
}

// insecureSource is a CredentialSource for plaintext inner connections
// (used only where the inner service is reached over a trusted local
// channel, e.g. loopback).
type insecureSource struct{}

func (insecureSource) Name() string { return "insecure" }

func (insecureSource) TransportCredentials() (credentials.TransportCredentials, error) {
	return insecure.NewCredentials(), nil
}

// NewInsecureCredentialSource returns a CredentialSource that performs
// no transport security.
func NewInsecureCredentialSource() CredentialSource {
	return insecureSource{}
}

// mtlsSource is a CredentialSource that resolves a client certificate
// and CA pool from a certprovider.Provider for every dial attempt, so
// a certificate rotated on disk is picked up on the next reconnect
// without restarting the process.
type mtlsSource struct {
	provider    certprovider.Provider
	keyLoader   certprovider.KeyLoader
	certStorage string
	serverName  string
}

// NewMTLSCredentialSource returns a CredentialSource that mutually
// authenticates to the inner service using the bundle resolved from
// provider for certStorage.
func NewMTLSCredentialSource(provider certprovider.Provider, keyLoader certprovider.KeyLoader, certStorage, serverName string) CredentialSource {
	return &mtlsSource{provider: provider, keyLoader: keyLoader, certStorage: certStorage, serverName: serverName}
}

func (m *mtlsSource) Name() string { return "mtls:" + m.certStorage }

func (m *mtlsSource) TransportCredentials() (credentials.TransportCredentials, error) {
	bundle, err := m.provider.GetBundle(m.certStorage)
	if err != nil {
		return nil, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "innerclient.mtlsSource.TransportCredentials", err)
	}

	signer, err := m.keyLoader.LoadPrivateKey(bundle.KeyURL)
	if err != nil {
		return nil, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "innerclient.mtlsSource.TransportCredentials", err)
	}

	rawChain := make([][]byte, len(bundle.CertChain))
	for i, cert := range bundle.CertChain {
		rawChain[i] = cert.Raw
	}

	var leaf *x509.Certificate
	if len(bundle.CertChain) > 0 {
		leaf = bundle.CertChain[0]
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{
			{Certificate: rawChain, PrivateKey: signer, Leaf: leaf},
		},
		RootCAs:    bundle.CAPool,
		ServerName: m.serverName,
		MinVersion: tls.VersionTLS12,
	}

	return credentials.NewTLS(cfg), nil
}
