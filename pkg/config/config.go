package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/travigo/urbantransit/pkg/util"
	"gopkg.in/yaml.v3"
)

// File is the optional YAML configuration pointed to by
// URBANTRANSIT_CONFIG_FILE. Every value maps onto an environment variable and
// anything already present in the environment takes precedence.
type File struct {
	Log struct {
		Format string `yaml:"format"`
		Debug  bool   `yaml:"debug"`
	} `yaml:"log"`

	MongoDB struct {
		Connection string `yaml:"connection"`
		Database   string `yaml:"database"`
	} `yaml:"mongodb"`

	Postgres struct {
		Connection string `yaml:"connection"`
	} `yaml:"postgres"`

	Neo4j struct {
		URI      string `yaml:"uri"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
	} `yaml:"neo4j"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		Database *int   `yaml:"database"`
	} `yaml:"redis"`

	Elasticsearch struct {
		Address       string `yaml:"address"`
		Username      string `yaml:"username"`
		Password      string `yaml:"password"`
		IndexPrefix   string `yaml:"index_prefix"`
		FlushInterval string `yaml:"flush_interval"`
	} `yaml:"elasticsearch"`

	Routing struct {
		MaxHops int `yaml:"max_hops"`
	} `yaml:"routing"`

	Simulator struct {
		DefaultSegment string `yaml:"default_segment"`
		WrapMode       string `yaml:"wrap_mode"`
		MaxWorkers     int    `yaml:"max_workers"`
	} `yaml:"simulator"`

	Reference struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"reference"`
}

func ParseFile(data []byte) (*File, error) {
	file := &File{}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return file, nil
}

// Environment flattens the file into environment variable form, unset values
// are left out
func (f *File) Environment() map[string]string {
	values := map[string]string{
		"URBANTRANSIT_LOG_FORMAT":                   f.Log.Format,
		"URBANTRANSIT_MONGODB_CONNECTION":           f.MongoDB.Connection,
		"URBANTRANSIT_MONGODB_DATABASE":             f.MongoDB.Database,
		"URBANTRANSIT_POSTGRES_CONNECTION":          f.Postgres.Connection,
		"URBANTRANSIT_NEO4J_URI":                    f.Neo4j.URI,
		"URBANTRANSIT_NEO4J_USER":                   f.Neo4j.User,
		"URBANTRANSIT_NEO4J_PASSWORD":               f.Neo4j.Password,
		"URBANTRANSIT_NEO4J_DATABASE":               f.Neo4j.Database,
		"URBANTRANSIT_REDIS_ADDRESS":                f.Redis.Address,
		"URBANTRANSIT_REDIS_PASSWORD":               f.Redis.Password,
		"URBANTRANSIT_ELASTICSEARCH_ADDRESS":        f.Elasticsearch.Address,
		"URBANTRANSIT_ELASTICSEARCH_USERNAME":       f.Elasticsearch.Username,
		"URBANTRANSIT_ELASTICSEARCH_PASSWORD":       f.Elasticsearch.Password,
		"URBANTRANSIT_ELASTICSEARCH_INDEX_PREFIX":   f.Elasticsearch.IndexPrefix,
		"URBANTRANSIT_ELASTICSEARCH_FLUSH_INTERVAL": f.Elasticsearch.FlushInterval,
		"URBANTRANSIT_SIM_DEFAULT_SEGMENT":          f.Simulator.DefaultSegment,
		"URBANTRANSIT_SIM_WRAP_MODE":                f.Simulator.WrapMode,
		"URBANTRANSIT_REFERENCE_CACHE_TTL":          f.Reference.CacheTTL,
	}

	if f.Log.Debug {
		values["URBANTRANSIT_DEBUG"] = "YES"
	}
	if f.Redis.Database != nil {
		values["URBANTRANSIT_REDIS_DATABASE"] = strconv.Itoa(*f.Redis.Database)
	}
	if f.Routing.MaxHops > 0 {
		values["URBANTRANSIT_ROUTE_MAX_HOPS"] = strconv.Itoa(f.Routing.MaxHops)
	}
	if f.Simulator.MaxWorkers > 0 {
		values["URBANTRANSIT_SIM_MAX_WORKERS"] = strconv.Itoa(f.Simulator.MaxWorkers)
	}

	for key, value := range values {
		if value == "" {
			delete(values, key)
		}
	}

	return values
}

// Load reads a .env file from the working directory if there is one, then
// the YAML file named by URBANTRANSIT_CONFIG_FILE. Neither overwrites
// variables that are already set.
func Load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	env := util.GetEnvironmentVariables()

	path := env["URBANTRANSIT_CONFIG_FILE"]
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	file, err := ParseFile(data)
	if err != nil {
		return err
	}

	applied := 0
	for key, value := range file.Environment() {
		if _, exists := env[key]; exists {
			continue
		}

		if err := os.Setenv(key, value); err != nil {
			return err
		}
		applied++
	}

	log.Debug().Str("file", path).Int("applied", applied).Msg("Loaded config file")

	return nil
}

func IntValue(key string, fallback int) int {
	value := util.GetEnvironmentVariables()[key]
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring invalid integer setting")
		return fallback
	}

	return n
}

func DurationValue(key string, fallback time.Duration) time.Duration {
	value := util.GetEnvironmentVariables()[key]
	if value == "" {
		return fallback
	}

	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring invalid duration setting")
		return fallback
	}

	return d
}
