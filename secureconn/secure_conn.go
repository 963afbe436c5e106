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

// Package secureconn builds the mutual TLS configuration of the etcd client
package secureconn

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// SecureConn holds a root CA pool and the client key pair
type SecureConn struct {
	rootCA *x509.CertPool
	cert   *tls.Certificate
}

// NewSecureConn creates an instance of SecureConn
func NewSecureConn(rootCA *x509.CertPool, cert *tls.Certificate) *SecureConn {
	return &SecureConn{
		rootCA: rootCA,
		cert:   cert,
	}
}

// NewSecureConnFromPEMBlocks creates an instance of SecureConn from the PEM
// encoded root certificates, private key and certificate
func NewSecureConnFromPEMBlocks(rootCAsPEMBlock, keyPEMBlock, certPEMBlock []byte) (*SecureConn, error) {
	certPool := x509.NewCertPool()
	if !certPool.AppendCertsFromPEM(rootCAsPEMBlock) {
		return nil, errors.New("no root certificate found in PEM block")
	}

	keyPair, err := tls.X509KeyPair(certPEMBlock, keyPEMBlock)
	if err != nil {
		return nil, fmt.Errorf("invalid key pair: %w", err)
	}

	return NewSecureConn(certPool, &keyPair), nil
}

// NewSecureConnFromFiles reads the PEM files and creates an instance of SecureConn
func NewSecureConnFromFiles(caFile, certFile, keyFile string) (*SecureConn, error) {
	blocks := make([][]byte, 0, 3)
	for _, file := range []string{caFile, keyFile, certFile} {
		block, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		blocks = append(blocks, block)
	}
	return NewSecureConnFromPEMBlocks(blocks[0], blocks[1], blocks[2])
}

// ClientConfig returns the TLS configuration used to dial the etcd cluster
func (conn *SecureConn) ClientConfig() *tls.Config {
	return &tls.Config{
		RootCAs:      conn.rootCA,
		Certificates: []tls.Certificate{*conn.cert},
		MinVersion:   tls.VersionTLS12,
		CurvePreferences: []tls.CurveID{
			tls.CurveP521,
			tls.CurveP384,
			tls.CurveP256,
		},
	}
}
