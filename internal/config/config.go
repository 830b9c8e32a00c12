// Package config は課外活動サービスの実行時設定を環境変数から読み込む。
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config は課外活動サービスの実行時設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"8080"`
	// Store は活動を保持するストアの種類（memory または sqlite）。
	Store string `env:"ACTIVITIES_STORE" envDefault:"memory"`
	// SQLiteDSN はsqliteストアのDSN。
	SQLiteDSN string `env:"ACTIVITIES_SQLITE_DSN" envDefault:":memory:"`
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string `env:"ACTIVITIES_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	// EnableMetrics は /metrics を公開するかどうか。
	EnableMetrics bool `env:"ACTIVITIES_ENABLE_METRICS" envDefault:"true"`
}

// Load はプロセスの環境変数から設定を読み込む。
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom は与えられた環境変数のmapから設定を読み込む。
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("環境変数の解析に失敗: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate は設定値の組み合わせを検証する。
func (c Config) validate() error {
	switch c.Store {
	case "memory":
	case "sqlite":
		if c.SQLiteDSN == "" {
			return fmt.Errorf("ACTIVITIES_SQLITE_DSN が空です")
		}
	default:
		return fmt.Errorf("ACTIVITIES_STORE の値が不正です: %q", c.Store)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT が空です")
	}
	return nil
}
