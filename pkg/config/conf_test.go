package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOrCreate_WritesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tradepulse")

	c, errs := ReadOrCreate(dir)
	require.Empty(t, errs)
	require.NotNil(t, c)
	assert.Equal(t, DefaultTopK, c.TopK)
	assert.Equal(t, DefaultWorkers, c.Workers)
	assert.Equal(t, DefaultReferenceDate, c.ReferenceDate)
	assert.Equal(t, DefaultLogLevel, c.LogLevel)

	_, err := os.Stat(filepath.Join(dir, FileName))
	assert.NoError(t, err)
}

func TestSaveAndReadOrCreate(t *testing.T) {
	dir := t.TempDir()

	c1 := Default()
	c1.TopK = 25
	c1.Workers = 8
	c1.Sources.Exporters = "https://example.com/exporters.csv"
	require.NoError(t, Save(dir, c1))

	c2, errs := ReadOrCreate(dir)
	require.Empty(t, errs)
	assert.Equal(t, 25, c2.TopK)
	assert.Equal(t, 8, c2.Workers)
	assert.Equal(t, c1.Sources.Exporters, c2.Sources.Exporters)
}

func TestSave_Errors(t *testing.T) {
	assert.Error(t, Save("", Default()))
	assert.Error(t, Save(t.TempDir(), nil))
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, Default()))

	t.Setenv(EnvTopK, "7")
	t.Setenv(EnvReferenceDate, "2024-06-30")
	t.Setenv(EnvDBPath, "/tmp/other.db")
	t.Setenv(EnvLogLevel, "debug")

	c, errs := Load(filepath.Join(dir, FileName))
	require.Empty(t, errs)
	assert.Equal(t, 7, c.TopK)
	assert.Equal(t, "2024-06-30", c.ReferenceDate)
	assert.Equal(t, "/tmp/other.db", c.DBPath)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoad_NoFile(t *testing.T) {
	c, errs := Load("")
	require.Empty(t, errs)
	assert.Equal(t, DefaultTopK, c.TopK)
}

func TestLoad_MissingFile(t *testing.T) {
	c, errs := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Nil(t, c)
	assert.Len(t, errs, 1)
}

func TestLoad_BadEnvInt(t *testing.T) {
	t.Setenv(EnvWorkers, "many")
	_, errs := Load("")
	assert.NotEmpty(t, errs)
}

func TestValidate(t *testing.T) {
	c := &Config{ReferenceDate: "01/01/2025", TopK: 0, Workers: -1}
	errs := c.Validate()
	require.Len(t, errs, 3)
	assert.ErrorIs(t, errs[0], ErrInvalidReferenceDate)
	assert.ErrorIs(t, errs[1], ErrInvalidTopK)
	assert.ErrorIs(t, errs[2], ErrInvalidWorkers)

	assert.Empty(t, Default().Validate())
}

func TestReference(t *testing.T) {
	ref, err := Default().Reference()
	require.NoError(t, err)
	assert.Equal(t, 2025, ref.Year())
	assert.Equal(t, 1, int(ref.Month()))
}
