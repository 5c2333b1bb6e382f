// Package certs builds the TLS trust configuration for talking to a ledger
// API served with a private or self-signed certificate.
package certs

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrNoCertificates is returned when a CA file holds no PEM certificates.
var ErrNoCertificates = errors.New("no certificates found")

// LoadPool returns the system roots extended with every certificate in caFile.
func LoadPool(caFile string) (*x509.CertPool, error) {
	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	certs, err := parsePEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CA file %s: %w", caFile, err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	for _, c := range certs {
		if err := verifyValidity(c, time.Now()); err != nil {
			return nil, fmt.Errorf("CA file %s: %w", caFile, err)
		}
		pool.AddCert(c)
	}
	return pool, nil
}

// ClientConfig returns a TLS client configuration trusting caFile in addition
// to the system roots.
func ClientConfig(caFile string) (*tls.Config, error) {
	pool, err := LoadPool(caFile)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}, nil
}

func parsePEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		c, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}
		certs = append(certs, c)
	}

	if len(certs) == 0 {
		return nil, ErrNoCertificates
	}
	return certs, nil
}

// verifyValidity checks that a certificate is inside its validity window.
func verifyValidity(c *x509.Certificate, now time.Time) error {
	if now.Before(c.NotBefore) {
		return fmt.Errorf("certificate %q not yet valid", c.Subject.CommonName)
	}
	if now.After(c.NotAfter) {
		return fmt.Errorf("certificate %q has expired", c.Subject.CommonName)
	}
	return nil
}
