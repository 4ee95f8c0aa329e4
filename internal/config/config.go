// Package config charge la configuration depuis l'environnement et un
// fichier .env optionnel via Viper.
package config

import (
	"github.com/spf13/viper"
)

// Config contient la configuration de l'application.
type Config struct {
	// Port est le port HTTP du serveur (ex: 8080).
	Port string `mapstructure:"PORT"`

	// Connexion PostgreSQL (store de référence).
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	// Connexion Redis (data plane). RedisAddr vide = data plane dégradé
	// (fail-open) dès le démarrage, le serveur démarre quand même.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// RateLimitEnabled désactive le rate limiting si false (utile en dev).
	RateLimitEnabled bool `mapstructure:"RATE_LIMIT_ENABLED"`

	// Env est l'environnement applicatif (development, production).
	Env string `mapstructure:"APP_ENV"`
}

// LoadConfig lit .env (si présent) puis l'environnement. Les variables
// d'environnement priment sur le .env. Un .env absent n'est pas une erreur.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignorer ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "shopquest")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("APP_ENV", "development")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
