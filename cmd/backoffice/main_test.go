package main

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetupLogger_DefaultLevel(t *testing.T) {
	setupLogger()

	if log.GetLevel() != log.InfoLevel {
		t.Errorf("expected info level by default, got %s", log.GetLevel())
	}
}

func TestSetupLogger_EnvOverride(t *testing.T) {
	t.Setenv("BACKOFFICE_LOG_LEVEL", "debug")
	setupLogger()

	if log.GetLevel() != log.DebugLevel {
		t.Errorf("expected debug level, got %s", log.GetLevel())
	}

	// Возвращаем уровень по умолчанию для остальных тестов пакета.
	log.SetLevel(log.InfoLevel)
}
