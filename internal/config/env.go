package config

import (
	"errors"
	"log/slog"
	"os"

	"github.com/BartekS5/gaexport/pkg/logger"
)

// Settings holds process-level configuration, typically loaded from
// environment variables (populated from .env in main.go).
type Settings struct {
	LogLevel        slog.Level
	LogFile         string
	SQLConnString   string
	MongoConnString string
}

// LoadSettings reads Settings from the environment. Connection strings are
// only checked later, by RequireMirrorConnections.
func LoadSettings() *Settings {
	return &Settings{
		LogLevel:        logger.ParseLevel(os.Getenv("LOG_LEVEL")),
		LogFile:         os.Getenv("LOG_FILE"),
		SQLConnString:   os.Getenv("SQL_CONNECTION_STRING"),
		MongoConnString: os.Getenv("MONGO_CONNECTION_STRING"),
	}
}

// RequireMirrorConnections fails when an enabled mirror has no connection string.
func (s *Settings) RequireMirrorConnections(m Mirrors) error {
	if m.SQLServer.Enabled && s.SQLConnString == "" {
		return errors.New("SQL_CONNECTION_STRING environment variable not set")
	}
	if m.MongoDB.Enabled && s.MongoConnString == "" {
		return errors.New("MONGO_CONNECTION_STRING environment variable not set")
	}
	return nil
}
