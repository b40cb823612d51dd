// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package hostcert resolves per-host client certificate material from
// configured file paths.
//
// Resolution is lenient by design: a missing certificate file is
// warned about and omitted field by field, and the request proceeds
// without that artifact.
package hostcert

import (
	"crypto/tls"
	"encoding/pem"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/pkcs12"
)

// Config is the configured location of one host's client certificate
// material. Paths may be absolute or relative; relative paths resolve
// against the workspace root when one is known, otherwise against the
// directory of the file that defined the request.
type Config struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	PFX        string `json:"pfx,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`
}

// A Certificate holds loaded client certificate material for one host.
type Certificate struct {
	Cert       []byte
	Key        []byte
	PFX        []byte
	Passphrase string
}

// TLSCertificates converts the loaded material into tls.Certificate
// values suitable for a TLS client configuration. PEM cert/key pairs
// and PKCS#12 bundles both yield one certificate; material that is
// present but unparsable yields an error.
func (c *Certificate) TLSCertificates() ([]tls.Certificate, error) {
	var out []tls.Certificate
	if len(c.Cert) > 0 && len(c.Key) > 0 {
		cert, err := tls.X509KeyPair(c.Cert, c.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, cert)
	}
	if len(c.PFX) > 0 {
		blocks, err := pkcs12.ToPEM(c.PFX, c.Passphrase)
		if err != nil {
			return nil, err
		}
		var pemData []byte
		for _, b := range blocks {
			pemData = append(pemData, pem.EncodeToMemory(b)...)
		}
		cert, err := tls.X509KeyPair(pemData, pemData)
		if err != nil {
			return nil, err
		}
		out = append(out, cert)
	}
	return out, nil
}

// A Resolver maps a request's host to its client certificate bundle.
type Resolver struct {
	// Table maps a host, exactly as it appears in the request URL's
	// authority (including any port), to its certificate configuration.
	Table map[string]Config

	// WorkspaceRoot, when non-empty, anchors relative certificate
	// paths.
	WorkspaceRoot string

	// Logger receives warnings about missing certificate files. The
	// zero value discards them.
	Logger zerolog.Logger
}

// Resolve returns the certificate material configured for the host of
// requestURL, or nil if none is configured or nothing could be loaded.
// requestDir is the directory of the file that defined the request; it
// anchors relative paths when no workspace root is known.
func (r *Resolver) Resolve(requestURL, requestDir string) *Certificate {
	u, err := url.Parse(requestURL)
	if err != nil {
		return nil
	}
	cfg, ok := r.Table[u.Host]
	if !ok {
		return nil
	}
	cert := &Certificate{Passphrase: cfg.Passphrase}
	loaded := false
	if b := r.load(cfg.Cert, requestDir); b != nil {
		cert.Cert = b
		loaded = true
	}
	if b := r.load(cfg.Key, requestDir); b != nil {
		cert.Key = b
		loaded = true
	}
	if b := r.load(cfg.PFX, requestDir); b != nil {
		cert.PFX = b
		loaded = true
	}
	if !loaded {
		return nil
	}
	return cert
}

func (r *Resolver) load(path, requestDir string) []byte {
	if path == "" {
		return nil
	}
	abs, ok := r.absolutePath(path, requestDir)
	if !ok {
		r.Logger.Warn().Str("path", path).Msg("client certificate file not found")
		return nil
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		r.Logger.Warn().Str("path", abs).Err(err).Msg("client certificate file not readable")
		return nil
	}
	return b
}

// absolutePath applies the resolution precedence: an absolute path is
// used as-is; otherwise the workspace root anchors the path if known;
// otherwise the requesting file's directory does. In every case the
// resulting file must exist.
func (r *Resolver) absolutePath(path, requestDir string) (string, bool) {
	var abs string
	switch {
	case filepath.IsAbs(path):
		abs = path
	case r.WorkspaceRoot != "":
		abs = filepath.Join(r.WorkspaceRoot, path)
	default:
		abs = filepath.Join(requestDir, path)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", false
	}
	return abs, true
}
