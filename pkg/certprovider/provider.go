package certprovider

import (
	"crypto"
	"crypto/x509"
)

// Bundle is the TLS credential material resolved for one named
// certificate storage: the leaf-and-chain certificates in
// presentation order, a PKCS#11-style URL identifying the private
// key, and the CA pool used to verify peers.
type Bundle struct {
	// CertChain is the leaf certificate followed by any intermediates.
	CertChain []*x509.Certificate

	// KeyURL identifies the private key (e.g. "pkcs11:token=...;object=...")
	// as returned by the certificate-management collaborator. A
	// Provider does not dereference the URL; a KeyLoader resolves it
	// (NewPassthroughKeyLoader reads it as a PEM file path).
	KeyURL string

	// CAPool is the trust anchor used to verify the remote peer.
	CAPool *x509.CertPool
}

// Provider resolves TLS credential bundles for a named certificate
// storage. Implementations are supplied by an external collaborator
// (spec.md §1); this package only defines the contract the secure
// channel consumes.
type Provider interface {
	// GetBundle returns the credential bundle for certStorage.
	GetBundle(certStorage string) (Bundle, error)
}

// KeyLoader resolves a PKCS#11-style key URL to a crypto.Signer.
// Engine initialization is out of scope for the core (spec.md §1);
// this interface only consumes an already-initialized resolver.
type KeyLoader interface {
	LoadPrivateKey(keyURL string) (crypto.Signer, error)
}
