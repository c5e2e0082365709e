package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yml")
	yamlText := "" +
		"debug: true\n" +
		"api:\n" +
		"  port: \"5000\"\n" +
		"  vcfPath: /data/vcfs\n" +
		"processing:\n" +
		"  bufferPolicy: block\n" +
		"  bufferParam: 30\n" +
		"  locusDbPath: /data/locus.db\n" +
		"elasticsearch:\n" +
		"  enabled: true\n" +
		"  url: http://localhost:9200\n"
	assert.NoError(t, os.WriteFile(configPath, []byte(yamlText), 0644))

	cfg, err := LoadConfig(configPath)
	assert.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "5000", cfg.Api.Port)
	assert.Equal(t, "/data/vcfs", cfg.Api.VcfPath)
	assert.Equal(t, "block", cfg.Processing.BufferPolicy)
	assert.Equal(t, int64(30), cfg.Processing.BufferParam)
	assert.True(t, cfg.Elasticsearch.Enabled)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
