// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-air/regnet/fix"
	"github.com/go-air/regnet/prime"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, prime.DefaultMaxSupport, c.Primes.MaxSupport)
	assert.Equal(t, "clauses", c.Fixpoints.Backend)
	assert.Equal(t, fix.Clauses, c.FixOptions().Backend)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
primes:
  max_support: 20
  workers: 4
fixpoints:
  backend: bdd
  max: 100
  pattern_support: 8
log:
  level: debug
  format: json
`))
	require.NoError(t, err)
	assert.Equal(t, 20, c.Primes.MaxSupport)
	assert.Equal(t, 4, c.Primes.Workers)

	o := c.FixOptions()
	assert.Equal(t, fix.BDD, o.Backend)
	assert.Equal(t, 100, o.Max)
	assert.Equal(t, 8, o.MaxSupport)
	assert.Equal(t, 4, o.Workers)
	assert.Nil(t, o.Logger)

	to := c.TrapOptions()
	assert.Equal(t, 20, to.MaxSupport)
	assert.Equal(t, 4, to.Workers)
	assert.Equal(t, fix.Terminal, to.Mode)
}

func TestParsePartial(t *testing.T) {
	c, err := Parse([]byte("fixpoints:\n  backend: circuit\n"))
	require.NoError(t, err)
	assert.Equal(t, "circuit", c.Fixpoints.Backend)
	assert.Equal(t, prime.DefaultMaxSupport, c.Primes.MaxSupport)
	assert.Equal(t, "info", c.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"support too large", "primes:\n  max_support: 63\n", "primes.max_support"},
		{"negative workers", "primes:\n  workers: -1\n", "primes.workers"},
		{"unknown backend", "fixpoints:\n  backend: zdd\n", "fixpoints.backend"},
		{"negative max", "fixpoints:\n  max: -2\n", "fixpoints.max"},
		{"pattern support too large", "fixpoints:\n  pattern_support: 62\n", "fixpoints.pattern_support"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"not yaml", "primes: [", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regnet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("primes:\n  workers: 2\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Primes.Workers)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	c := Default()
	c.Log.Format = "json"
	l := c.Logger(&buf)
	l.Debug("hidden")
	l.Info("shown", "k", 1)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), out)
	assert.Contains(t, out, `"k":1`)

	buf.Reset()
	c.Log = LogConfig{Level: "debug", Format: "text"}
	c.Logger(&buf).Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}
