package certprovider

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileProvider resolves credential bundles from a directory laid out
// as <basePath>/<certStorage>/{cert.pem,ca.pem} plus a key URL file,
// the on-disk shape used when certificates are provisioned to the
// filesystem rather than a PKCS#11 token. It caches parsed bundles and
// optionally watches the directory for changes, mirroring the
// teacher's file-backed secret provider.
type FileProvider struct {
	basePath string
	keyLoader KeyLoader

	mu      sync.RWMutex
	cache   map[string]Bundle
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewFileProvider constructs a FileProvider rooted at basePath. If
// watch is true, a change to a storage entry directly under basePath
// (a storage directory created, removed, renamed or written)
// invalidates the cache for that storage so the next GetBundle call
// re-reads from disk; an in-flight secure channel is unaffected until
// its next reconnect. The watch is not recursive: a file rewritten
// inside a storage directory does not invalidate the cache.
func NewFileProvider(basePath string, keyLoader KeyLoader, watch bool) (*FileProvider, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("certprovider: stat base path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("certprovider: base path %q is not a directory", basePath)
	}

	p := &FileProvider{
		basePath:  basePath,
		keyLoader: keyLoader,
		cache:     make(map[string]Bundle),
	}

	if watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("certprovider: create watcher: %w", err)
		}
		if err := w.Add(basePath); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("certprovider: watch base path: %w", err)
		}
		p.watcher = w
		p.stopCh = make(chan struct{})
		go p.watchLoop()
	}

	return p, nil
}

// GetBundle implements Provider.
func (p *FileProvider) GetBundle(certStorage string) (Bundle, error) {
	p.mu.RLock()
	if b, ok := p.cache[certStorage]; ok {
		p.mu.RUnlock()
		return b, nil
	}
	p.mu.RUnlock()

	b, err := p.load(certStorage)
	if err != nil {
		return Bundle{}, err
	}

	p.mu.Lock()
	p.cache[certStorage] = b
	p.mu.Unlock()

	return b, nil
}

func (p *FileProvider) load(certStorage string) (Bundle, error) {
	dir := filepath.Join(p.basePath, certStorage)

	certPEM, err := os.ReadFile(filepath.Join(dir, "cert.pem"))
	if err != nil {
		return Bundle{}, fmt.Errorf("certprovider: read cert chain: %w", err)
	}
	chain, err := parseCertChain(certPEM)
	if err != nil {
		return Bundle{}, fmt.Errorf("certprovider: parse cert chain: %w", err)
	}

	caPEM, err := os.ReadFile(filepath.Join(dir, "ca.pem"))
	if err != nil {
		return Bundle{}, fmt.Errorf("certprovider: read CA cert: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return Bundle{}, fmt.Errorf("certprovider: no CA certificates found in %s", filepath.Join(dir, "ca.pem"))
	}

	keyURLBytes, err := os.ReadFile(filepath.Join(dir, "key.url"))
	if err != nil {
		return Bundle{}, fmt.Errorf("certprovider: read key URL: %w", err)
	}

	return Bundle{
		CertChain: chain,
		KeyURL:    string(keyURLBytes),
		CAPool:    pool,
	}, nil
}

func parseCertChain(pemBytes []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate

	rest := pemBytes
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}

	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates found")
	}

	return certs, nil
}

func (p *FileProvider) watchLoop() {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			storage := filepath.Base(event.Name)
			p.mu.Lock()
			delete(p.cache, storage)
			p.mu.Unlock()
			slog.Info("certificate storage invalidated by filesystem change",
				"storage", storage, "path", event.Name)
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("certificate watcher error", "error", err)
		case <-p.stopCh:
			return
		}
	}
}

// Close stops the file watcher, if any.
func (p *FileProvider) Close() error {
	if p.watcher == nil {
		return nil
	}
	close(p.stopCh)
	return p.watcher.Close()
}

// pkcs11KeyLoader is a placeholder KeyLoader that expects the key URL
// to be a plain filesystem path to a PEM-encoded PKCS#8 key, used in
// deployments where an external PKCS#11 engine is not configured
// (spec.md §1: engine initialization is an external collaborator's
// concern). A real PKCS#11-backed loader is injected in its place
// when the engine is available.
type pkcs11KeyLoader struct{}

// NewPassthroughKeyLoader returns a KeyLoader that treats the key URL
// as a plain PEM file path.
func NewPassthroughKeyLoader() KeyLoader {
	return pkcs11KeyLoader{}
}

func (pkcs11KeyLoader) LoadPrivateKey(keyURL string) (crypto.Signer, error) {
	data, err := os.ReadFile(keyURL)
	if err != nil {
		return nil, fmt.Errorf("certprovider: read key file %q: %w", keyURL, err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("certprovider: no PEM block in %q", keyURL)
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		if k, err2 := x509.ParseECPrivateKey(block.Bytes); err2 == nil {
			return k, nil
		}
		return nil, fmt.Errorf("certprovider: parse private key: %w", err)
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("certprovider: key in %q is not a signer", keyURL)
	}

	return signer, nil
}
