// Package config is the PDP's layered configuration: viper with
// defaults, a YAML file, and environment overrides, unmarshaled into a
// typed Configuration.
package config

import (
	"log"

	"github.com/spf13/viper"
)

type Configuration struct {
	Server        ServerConfiguration
	Neo4j         DatabaseConfiguration
	Redis         RedisConfiguration
	Elasticsearch ElasticsearchConfiguration
	PDP           PDPConfiguration
}

// ServerConfiguration stores the port and other web server settings.
type ServerConfiguration struct {
	Port string
}

// DatabaseConfiguration stores data for the Neo4j policy store connection.
type DatabaseConfiguration struct {
	URI      string
	Username string
	Password string
}

// RedisConfiguration stores data for the Redis policy-document cache.
type RedisConfiguration struct {
	Addr               string
	DefaultCacheTTL    string
	EncryptionKeyEnv   string
}

// ElasticsearchConfiguration stores data for the audit-record sink.
type ElasticsearchConfiguration struct {
	URL   string
	Index string
}

// PDPConfiguration holds evaluation-level settings: where policy
// documents live, whether the Bloom pre-selector is enabled, and the
// top-level policy-combining algorithm.
type PDPConfiguration struct {
	PolicyDir              string
	TopLevelAlgorithm      string
	BloomPreFilterEnabled  bool
	RateLimitPerMinute     int
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("neo4j.uri", "bolt://localhost:7687")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.defaultCacheTTL", "10m")
	viper.SetDefault("redis.encryptionKeyEnv", "PDP_CACHE_ENCRYPTION_KEY")
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("elasticsearch.index", "xacml-audit")
	viper.SetDefault("pdp.policyDir", "testdata/policies")
	viper.SetDefault("pdp.topLevelAlgorithm", "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:deny-overrides")
	viper.SetDefault("pdp.bloomPreFilterEnabled", true)
	viper.SetDefault("pdp.rateLimitPerMinute", 600)
	viper.SetDefault("log.file", "logging/pdp.log")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	return viper.Unmarshal(&config)
}

func GetConfig() *Configuration { return config }

func GetString(key string) string   { return viper.GetString(key) }
func GetInt(key string) int         { return viper.GetInt(key) }
func GetBool(key string) bool       { return viper.GetBool(key) }
func GetFloat64(key string) float64 { return viper.GetFloat64(key) }
