package config

import (
	"os"
	"sync"

	"pyape/logutils"
	"pyape/orm"

	"github.com/joho/godotenv"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath  = "PYAPE_CONFIG"
	EnvDatabaseURI = "PYAPE_DATABASE_URI"
	EnvLogLevel    = "PYAPE_LOG_LEVEL"

	defaultConfigPath = "./etc/config.yaml"
)

type Config struct {
	Database struct {
		URI           URIs              `yaml:"uri"`
		EngineOptions orm.EngineOptions `yaml:"engine_options"`
	} `yaml:"database"`
	// Regionals is the static regional list. It may be empty when regionals
	// are loaded from the regional table instead.
	Regionals []map[string]any `yaml:"regionals"`
	Redis     struct {
		URI URIs `yaml:"uri"`
	} `yaml:"redis"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// URIs is a bind spec written either as one URI string or as a mapping of
// bind key to URI. Mapping order is kept: the first key is the default bind.
type URIs orm.URISpec

func (u *URIs) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var uri string
		if err := node.Decode(&uri); err != nil {
			return err
		}
		if uri == "" {
			*u = nil
			return nil
		}
		*u = URIs(orm.SingleURI(uri))
		return nil
	case yaml.MappingNode:
		spec := make(URIs, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var key, uri string
			if err := node.Content[i].Decode(&key); err != nil {
				return err
			}
			if err := node.Content[i+1].Decode(&uri); err != nil {
				return errors.Annotatef(err, "uri of bind %q", key)
			}
			spec = append(spec, orm.BindURI{Key: key, URI: uri})
		}
		*u = spec
		return nil
	}
	return errors.NotValidf("uri at line %d", node.Line)
}

// Spec returns the binds as an orm.URISpec.
func (u URIs) Spec() orm.URISpec {
	return orm.URISpec(u)
}

var (
	once   sync.Once
	config *Config
)

// GetConfig loads the configuration once, from $PYAPE_CONFIG or
// ./etc/config.yaml, and panics when it cannot.
func GetConfig() *Config {
	once.Do(func() {
		path := os.Getenv(EnvConfigPath)
		if path == "" {
			path = defaultConfigPath
		}
		var err error
		config, err = Load(path)
		if err != nil {
			logutils.Log.Error("init config ", err)
			panic(err)
		}
	})
	return config
}

// Load reads the YAML file at path. A .env file in the working directory is
// loaded first when present, then environment overrides are applied.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Annotate(err, "load .env")
	}
	cfg := &Config{}
	if err := readConfig(path, cfg); err != nil {
		return nil, errors.Annotatef(err, "read config %s", path)
	}
	cfg.applyEnv()
	if len(cfg.Database.URI) == 0 {
		return nil, errors.Annotatef(orm.ErrConfiguration, "database.uri is empty")
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if uri := os.Getenv(EnvDatabaseURI); uri != "" {
		c.Database.URI = URIs(orm.SingleURI(uri))
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
}

func readConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

// RegionalConfig builds the static regional list, or returns nil when none
// is configured.
func (c *Config) RegionalConfig() (*orm.RegionalConfig, error) {
	if len(c.Regionals) == 0 {
		return nil, nil
	}
	rconf, err := orm.ParseRegionalConfig(c.Regionals)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if !rconf.HasGlobal() {
		logutils.Log.Warnf("regional %d is not configured", orm.GlobalRegional)
	}
	return rconf, nil
}
