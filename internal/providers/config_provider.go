package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"labdash/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "LABDASH_LOG_LEVEL")
	viper.BindEnv("backend.baseUrl", "LABDASH_BACKEND_URL")
	viper.BindEnv("backend.username", "LABDASH_BACKEND_USERNAME")
	viper.BindEnv("backend.password", "LABDASH_BACKEND_PASSWORD")
	viper.BindEnv("backend.token", "LABDASH_BACKEND_TOKEN")
	viper.BindEnv("hub.url", "LABDASH_HUB_URL")
	viper.BindEnv("refresh.interval", "LABDASH_REFRESH_INTERVAL")
	viper.BindEnv("cache.enabled", "LABDASH_CACHE_ENABLED")
	viper.BindEnv("cache.size", "LABDASH_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "LabAccessDashboard"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
