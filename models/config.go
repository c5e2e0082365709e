package models

import (
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Debug bool `yaml:"debug" envconfig:"HAPLO_DEBUG"`

	Api struct {
		Port    string `yaml:"port" envconfig:"HAPLO_API_INTERNAL_PORT"`
		VcfPath string `yaml:"vcfPath" envconfig:"HAPLO_API_VCF_PATH"`
	} `yaml:"api"`
	Processing struct {
		BufferPolicy string `yaml:"bufferPolicy" envconfig:"HAPLO_BUFFER_POLICY"`
		BufferParam  int64  `yaml:"bufferParam" envconfig:"HAPLO_BUFFER_PARAM"`
		LocusDbPath  string `yaml:"locusDbPath" envconfig:"HAPLO_LOCUS_DB_PATH"`
	} `yaml:"processing"`
	Elasticsearch struct {
		Enabled  bool   `yaml:"enabled" envconfig:"HAPLO_ES_ENABLED"`
		Url      string `yaml:"url" envconfig:"HAPLO_ES_URL"`
		Username string `yaml:"username" envconfig:"HAPLO_ES_USERNAME"`
		Password string `yaml:"password" envconfig:"HAPLO_ES_PASSWORD"`
	} `yaml:"elasticsearch"`
}

// LoadConfig reads a yaml configuration file. Environment
// variables processed afterwards take precedence over it.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
