package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"rently/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "RENTLY_LOG_LEVEL")
	viper.BindEnv("mongo.uri", "RENTLY_MONGO_URI")
	viper.BindEnv("mongo.database", "RENTLY_MONGO_DATABASE")
	viper.BindEnv("auth.identityUrl", "RENTLY_IDENTITY_URL")
	viper.BindEnv("auth.jwtSecret", "RENTLY_JWT_SECRET")
	viper.BindEnv("moderation.flagThreshold", "RENTLY_FLAG_THRESHOLD")
	viper.BindEnv("responseCache.enabled", "RENTLY_RESPONSE_CACHE_ENABLED")
	viper.BindEnv("responseCache.size", "RENTLY_RESPONSE_CACHE_SIZE")

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

	conf.AppName = "RentlyCore"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
