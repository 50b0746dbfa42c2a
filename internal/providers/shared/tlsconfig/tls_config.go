package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"strings"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/faults"
)

// Build returns nil when no TLS settings are configured so callers keep the
// transport defaults. scope prefixes configuration keys in error messages.
func Build(settings *config.TLS, scope string) (*tls.Config, error) {
	if settings == nil {
		return nil, nil
	}

	result := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: settings.InsecureSkipVerify,
	}

	pool, err := loadRootCAs(strings.TrimSpace(settings.CACertFile), scope)
	if err != nil {
		return nil, err
	}
	result.RootCAs = pool

	certificate, err := loadClientCertificate(
		strings.TrimSpace(settings.ClientCertFile),
		strings.TrimSpace(settings.ClientKeyFile),
		scope,
	)
	if err != nil {
		return nil, err
	}
	if certificate != nil {
		result.Certificates = []tls.Certificate{*certificate}
	}

	return result, nil
}

func loadRootCAs(path string, scope string) (*x509.CertPool, error) {
	if path == "" {
		return nil, nil
	}

	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, validationError(scope+".tls.ca-cert-file could not be read", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pemBytes) {
		return nil, validationError(scope+".tls.ca-cert-file is not valid PEM", nil)
	}
	return pool, nil
}

func loadClientCertificate(certFile string, keyFile string, scope string) (*tls.Certificate, error) {
	if (certFile == "") != (keyFile == "") {
		return nil, validationError(scope+".tls requires both client-cert-file and client-key-file", nil)
	}
	if certFile == "" {
		return nil, nil
	}

	certificate, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, validationError(scope+".tls client certificate pair is invalid", err)
	}
	return &certificate, nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}
