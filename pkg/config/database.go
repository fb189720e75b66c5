package config

import "github.com/sentinelops/sentinel/pkg/database"

func (c DatabaseConfig) ToDBConfig() database.Config {
	return database.Config{
		Host:           c.Host,
		Port:           c.Port,
		Name:           c.Name,
		User:           c.User,
		Password:       c.Password,
		MaxConnections: c.MaxConnections,
		SSLMode:        c.SSLMode,
	}
}
