package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/agri-assist-api/internal/domain"
)

func TestWrite_OutputParsesBackToDefaults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, write(&buf, domain.DefaultReferenceData()))
	require.True(t, strings.HasPrefix(buf.String(), "# Reference data"))

	got, err := domain.ParseReferenceData(buf.Bytes())
	require.NoError(t, err)

	if diff := cmp.Diff(domain.DefaultReferenceData(), got); diff != "" {
		t.Fatalf("reference data mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.yaml")
	require.NoError(t, writeFile(path, domain.DefaultReferenceData()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := domain.ParseReferenceData(data)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(domain.DefaultReferenceData(), got))
}

func TestWriteFile_CreateError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "reference.yaml")
	err := writeFile(path, domain.DefaultReferenceData())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create")
}
