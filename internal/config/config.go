package config

import (
	"fmt"

	"github.com/meddela/dispatch/pkg/elks"
	"github.com/meddela/dispatch/pkg/mysql"
	"github.com/spf13/viper"
)

type Config struct {
	API      API          `mapstructure:"api"`
	Database mysql.Config `mapstructure:"database"`
	Gateway  elks.Config  `mapstructure:"gateway"`
	Cron     Cron         `mapstructure:"cron"`
	Campaign Campaign     `mapstructure:"campaign"`
	SMS      SMS          `mapstructure:"sms"`
}

type API struct {
	Port string `mapstructure:"port"`
}

type Cron struct {
	Secret string `mapstructure:"secret"`
}

type Campaign struct {
	BatchSize int    `mapstructure:"batch_size"`
	Interval  string `mapstructure:"interval"`
}

type SMS struct {
	DefaultSender string `mapstructure:"default_sender"`
}

func Load() (cfg *Config, err error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath("./config")

	viper.SetDefault("campaign.batch_size", 10)
	viper.SetDefault("campaign.interval", "1m")
	viper.SetDefault("sms.default_sender", "MEDDELA")

	err = viper.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
