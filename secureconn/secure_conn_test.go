// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package secureconn

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// selfSigned returns the PEM encoded certificate and key of a self signed CA
func selfSigned(t *testing.T) (certPEM, keyPEM []byte) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "sketcd"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM
}

func TestSecureConn(t *testing.T) {
	certPEM, keyPEM := selfSigned(t)

	t.Run("With PEM blocks", func(t *testing.T) {
		conn, err := NewSecureConnFromPEMBlocks(certPEM, keyPEM, certPEM)
		require.NoError(t, err)

		config := conn.ClientConfig()
		require.NotNil(t, config)
		assert.Len(t, config.Certificates, 1)
		assert.NotNil(t, config.RootCAs)
		assert.EqualValues(t, tls.VersionTLS12, config.MinVersion)
	})
	t.Run("With files", func(t *testing.T) {
		dir := t.TempDir()
		certFile := filepath.Join(dir, "cert.pem")
		keyFile := filepath.Join(dir, "key.pem")
		require.NoError(t, os.WriteFile(certFile, certPEM, 0o600))
		require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))

		conn, err := NewSecureConnFromFiles(certFile, certFile, keyFile)
		require.NoError(t, err)
		assert.NotNil(t, conn.ClientConfig())
	})
	t.Run("With missing file", func(t *testing.T) {
		conn, err := NewSecureConnFromFiles(filepath.Join(t.TempDir(), "ca.pem"), "cert.pem", "key.pem")
		require.Error(t, err)
		assert.Nil(t, conn)
	})
	t.Run("With invalid root CA", func(t *testing.T) {
		conn, err := NewSecureConnFromPEMBlocks([]byte("garbage"), keyPEM, certPEM)
		require.Error(t, err)
		assert.Nil(t, conn)
	})
	t.Run("With mismatched key pair", func(t *testing.T) {
		_, otherKey := selfSigned(t)
		conn, err := NewSecureConnFromPEMBlocks(certPEM, otherKey, certPEM)
		require.Error(t, err)
		assert.Nil(t, conn)
	})
}
