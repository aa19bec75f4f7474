// Package certprovider defines the contract the gateway core consumes
// from its certificate-management collaborator (spec.md §1): for a
// named certificate storage, return the certificate chain, the CA
// trust anchor, and a PKCS#11-style URL identifying the private key.
// Provisioning policy, engine initialization, and key generation are
// out of scope here — this package only resolves already-issued
// material.
package certprovider
