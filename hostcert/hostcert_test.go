// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package hostcert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolver_Resolve(t *testing.T) {
	t.Run("NoEntryForHost", func(t *testing.T) {
		r := &Resolver{Table: map[string]Config{"other.example.com": {}}}
		assert.Nil(t, r.Resolve("https://example.com/api", ""))
	})
	t.Run("HostMatchIncludesPort", func(t *testing.T) {
		dir := t.TempDir()
		pfx := writeFile(t, dir, "client.pfx", "pfx-bytes")
		r := &Resolver{Table: map[string]Config{
			"example.com:8443": {PFX: pfx, Passphrase: "pw"},
		}}
		assert.Nil(t, r.Resolve("https://example.com/api", dir))
		cert := r.Resolve("https://example.com:8443/api", dir)
		require.NotNil(t, cert)
		assert.Equal(t, []byte("pfx-bytes"), cert.PFX)
		assert.Equal(t, "pw", cert.Passphrase)
	})
	t.Run("AbsolutePaths", func(t *testing.T) {
		dir := t.TempDir()
		certPath := writeFile(t, dir, "client.crt", "cert-bytes")
		keyPath := writeFile(t, dir, "client.key", "key-bytes")
		r := &Resolver{Table: map[string]Config{
			"example.com": {Cert: certPath, Key: keyPath},
		}}
		cert := r.Resolve("https://example.com/", "")
		require.NotNil(t, cert)
		assert.Equal(t, []byte("cert-bytes"), cert.Cert)
		assert.Equal(t, []byte("key-bytes"), cert.Key)
		assert.Nil(t, cert.PFX)
	})
	t.Run("WorkspaceRootPrecedesRequestDir", func(t *testing.T) {
		root := t.TempDir()
		reqDir := t.TempDir()
		writeFile(t, root, "client.crt", "from-root")
		writeFile(t, reqDir, "client.crt", "from-reqdir")
		r := &Resolver{
			Table:         map[string]Config{"example.com": {Cert: "client.crt"}},
			WorkspaceRoot: root,
		}
		cert := r.Resolve("https://example.com/", reqDir)
		require.NotNil(t, cert)
		assert.Equal(t, []byte("from-root"), cert.Cert)
	})
	t.Run("RequestDirFallback", func(t *testing.T) {
		reqDir := t.TempDir()
		writeFile(t, reqDir, "client.crt", "from-reqdir")
		r := &Resolver{Table: map[string]Config{"example.com": {Cert: "client.crt"}}}
		cert := r.Resolve("https://example.com/", reqDir)
		require.NotNil(t, cert)
		assert.Equal(t, []byte("from-reqdir"), cert.Cert)
	})
	t.Run("MissingFileOmittedFieldByField", func(t *testing.T) {
		dir := t.TempDir()
		keyPath := writeFile(t, dir, "client.key", "key-bytes")
		r := &Resolver{Table: map[string]Config{
			"example.com": {Cert: filepath.Join(dir, "nope.crt"), Key: keyPath},
		}}
		cert := r.Resolve("https://example.com/", "")
		require.NotNil(t, cert)
		assert.Nil(t, cert.Cert)
		assert.Equal(t, []byte("key-bytes"), cert.Key)
	})
	t.Run("AllFilesMissing", func(t *testing.T) {
		r := &Resolver{Table: map[string]Config{
			"example.com": {Cert: "/does/not/exist.crt"},
		}}
		assert.Nil(t, r.Resolve("https://example.com/", ""))
	})
}

func TestCertificate_TLSCertificates(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		certs, err := (&Certificate{}).TLSCertificates()
		assert.NoError(t, err)
		assert.Empty(t, certs)
	})
	t.Run("GarbagePEM", func(t *testing.T) {
		c := &Certificate{Cert: []byte("not pem"), Key: []byte("not pem")}
		certs, err := c.TLSCertificates()
		assert.Error(t, err)
		assert.Nil(t, certs)
	})
	t.Run("GarbagePFX", func(t *testing.T) {
		c := &Certificate{PFX: []byte("not pkcs12")}
		certs, err := c.TLSCertificates()
		assert.Error(t, err)
		assert.Nil(t, certs)
	})
}
