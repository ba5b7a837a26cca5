package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Load 从指定目录读取 config.yaml，并允许环境变量覆盖。
// 配置文件不存在时返回默认配置，保证本地开发零配置可跑。
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path == "" {
		path = "./config"
	}
	v.AddConfigPath(path)
	v.SetEnvPrefix("ECOMMERCE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return nil, err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
