package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
	Session  SessionConfig  `mapstructure:"session"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

type ServerConfig struct {
	HTTPAddress string `mapstructure:"http_address"`
	RPCAddress  string `mapstructure:"rpc_address"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // gorm or pq
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type GameConfig struct {
	StartingBalance int `mapstructure:"starting_balance"`
	HistorySize     int `mapstructure:"history_size"`
	LeaderboardSize int `mapstructure:"leaderboard_size"`
	JoinSnapshot    int `mapstructure:"join_snapshot"`
}

type SessionConfig struct {
	IdleTimeoutSeconds int `mapstructure:"idle_timeout_seconds"`
}

type JobsConfig struct {
	FlushSchedule string `mapstructure:"flush_schedule"`
}

func setDefaults() {
	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.driver", "gorm")
	viper.SetDefault("database.postgres.host", "localhost")
	viper.SetDefault("database.postgres.port", 5432)
	viper.SetDefault("database.postgres.user", "postgres")
	viper.SetDefault("database.postgres.dbname", "slotserver")
	viper.SetDefault("game.starting_balance", 1000)
	viper.SetDefault("game.history_size", 100)
	viper.SetDefault("game.leaderboard_size", 10)
	viper.SetDefault("game.join_snapshot", 20)
	viper.SetDefault("session.idle_timeout_seconds", 300)
	viper.SetDefault("jobs.flush_schedule", "@every 1m")
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	setDefaults()
	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err != nil {
		// A missing config file is fine, the defaults plus env cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
