package http

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
)

// Static errors for err113 compliance.
var (
	ErrBadCACertificate     = errors.New("no certificates found in CA file")
	ErrCertKeyCountMismatch = errors.New("client certificate and key counts differ")
	ErrUnsupportedProxy     = errors.New("unsupported proxy scheme")
)

// TLSMaterial memoizes the CA certificates and client cert/key pairs read
// from configured file paths. The load happens at most once per process
// lifetime; changed certificate files require a fresh process. Construct it
// once and inject it, do not reach for ambient globals.
type TLSMaterial struct {
	caFiles   []string
	certFiles []string
	keyFiles  []string

	once   sync.Once
	config *tls.Config
	err    error
}

// NewTLSMaterial creates TLS material over CA, client certificate and client
// key file paths. Each argument is an ordered list; callers normalize
// single-path config values with forge.NormalizePathList.
func NewTLSMaterial(caFiles, certFiles, keyFiles []string) *TLSMaterial {
	return &TLSMaterial{
		caFiles:   caFiles,
		certFiles: certFiles,
		keyFiles:  keyFiles,
	}
}

// Empty reports whether no file paths are configured at all.
func (m *TLSMaterial) Empty() bool {
	return m == nil || (len(m.caFiles) == 0 && len(m.certFiles) == 0 && len(m.keyFiles) == 0)
}

// Config returns the memoized tls.Config, loading file contents on first use.
// A nil config means the default TLS stack applies.
func (m *TLSMaterial) Config() (*tls.Config, error) {
	if m.Empty() {
		return nil, nil
	}

	m.once.Do(m.load)

	return m.config, m.err
}

func (m *TLSMaterial) load() {
	config := &tls.Config{MinVersion: tls.VersionTLS12}

	if len(m.caFiles) > 0 {
		pool := x509.NewCertPool()

		for _, path := range m.caFiles {
			pem, err := os.ReadFile(path)
			if err != nil {
				m.err = fmt.Errorf("reading CA file: %w", err)

				return
			}

			if !pool.AppendCertsFromPEM(pem) {
				m.err = fmt.Errorf("%w: %s", ErrBadCACertificate, path)

				return
			}
		}

		config.RootCAs = pool
	}

	if len(m.certFiles) != len(m.keyFiles) {
		m.err = fmt.Errorf("%w: %d certs, %d keys",
			ErrCertKeyCountMismatch, len(m.certFiles), len(m.keyFiles))

		return
	}

	for i, certPath := range m.certFiles {
		cert, err := tls.LoadX509KeyPair(certPath, m.keyFiles[i])
		if err != nil {
			m.err = fmt.Errorf("loading client key pair: %w", err)

			return
		}

		config.Certificates = append(config.Certificates, cert)
	}

	m.config = config
}

// proxyFromConfig returns the transport proxy selector for a configured
// global proxy URL. An empty URL falls back to the process environment; a
// malformed URL or a scheme the transport cannot speak propagates as an
// error rather than being silently dropped.
func proxyFromConfig(raw string) (func(*http.Request) (*url.URL, error), error) {
	if raw == "" {
		return http.ProxyFromEnvironment, nil
	}

	proxyURL, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy URL: %w", err)
	}

	switch proxyURL.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProxy, proxyURL.Scheme)
	}

	return http.ProxyURL(proxyURL), nil
}
