package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultFactions is the shipped closed faction set. Override with the
// "factions" config key; mission creation only accepts factions from
// this set.
var DefaultFactions = []string{
	"Emerald Enclave 🌿",
	"Lord's Alliance 👑",
	"Harpers 🎼",
	"Force Grey 🥷",
}

// RemoteConfig holds connection settings for the remote tabular mirror.
// Password and Database double as the capability pair: both must be
// non-empty for the mirror to activate at startup.
type RemoteConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// CapabilityPresent reports whether both remote capabilities (service
// credential and target resource identifier) are configured.
func (c RemoteConfig) CapabilityPresent() bool {
	return c.Password != "" && c.Database != ""
}

// InfluxConfig holds activity telemetry settings.
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
}

// GraylogConfig holds GELF log shipping settings.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// Load reads configuration from the JSON file in configDir and sets
// default values. A missing config file is fine, defaults apply; an
// unreadable or malformed one is an error.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("dataDir", ".")
	viper.SetDefault("localFile", "missions.json")
	viper.SetDefault("factions", DefaultFactions)
	viper.SetDefault("store.savePolicy", "last-writer-wins")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "")
	viper.SetDefault("db.database", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetConfigName("missionstore.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFactions returns the configured closed faction set.
func GetFactions() []string {
	return viper.GetStringSlice("factions")
}

// GetSavePolicy returns the configured save policy string.
func GetSavePolicy() string {
	return viper.GetString("store.savePolicy")
}

// GetRemoteConfig returns the remote mirror settings.
func GetRemoteConfig() RemoteConfig {
	return RemoteConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetInfluxConfig returns the activity telemetry settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Protocol: viper.GetString("influx.protocol"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
	}
}

// GetGraylogConfig returns the GELF log shipping settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// LocalFilePath returns the path of the local document file.
func LocalFilePath() string {
	return filepath.Join(viper.GetString("dataDir"), viper.GetString("localFile"))
}

// LogFilePath returns the path of the log file.
func LogFilePath() string {
	return filepath.Join(viper.GetString("logsDir"), "missionstore.log")
}
