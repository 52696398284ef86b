package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

const (
	defaultTimeFormat = "15:04:05"
	logFileMaxSize    = 100 * 1024 * 1024 // 100 MB
	logFileMaxBackups = 3
)

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

// GetLogger returns the global logger, creating a console logger on first use
func GetLogger() arbor.ILogger {
	loggerMutex.RLock()
	logger := globalLogger
	loggerMutex.RUnlock()
	if logger != nil {
		return logger
	}

	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if globalLogger == nil {
		globalLogger = arbor.NewLogger().WithConsoleWriter(consoleWriter(defaultTimeFormat))
	}
	return globalLogger
}

// InitLogger builds the logger from config and installs it as the global logger
func InitLogger(config *Config) arbor.ILogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	timeFormat := config.Logging.TimeFormat
	if timeFormat == "" {
		timeFormat = defaultTimeFormat
	}

	toFile, toConsole := logOutputs(config.Logging.Output)
	logger := arbor.NewLogger()

	if toFile {
		if path, err := logFilePath(config.Logging); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
			toConsole = true
		} else {
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   path,
				TimeFormat: timeFormat,
				MaxSize:    logFileMaxSize,
				MaxBackups: logFileMaxBackups,
				TextOutput: true,
			})
		}
	}

	if toConsole {
		logger = logger.WithConsoleWriter(consoleWriter(timeFormat))
	}

	logger = logger.WithLevelFromString(config.Logging.Level)
	globalLogger = logger
	return logger
}

func consoleWriter(timeFormat string) models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: timeFormat,
		TextOutput: true,
	}
}

// logOutputs reports which writers are requested; no outputs means console only
func logOutputs(outputs []string) (toFile, toConsole bool) {
	for _, output := range outputs {
		switch strings.ToLower(strings.TrimSpace(output)) {
		case "file":
			toFile = true
		case "stdout", "console":
			toConsole = true
		}
	}
	if !toFile && !toConsole {
		toConsole = true
	}
	return toFile, toConsole
}

// logFilePath resolves and creates the log directory
func logFilePath(cfg LoggingConfig) (string, error) {
	dir := cfg.Dir
	if dir == "" {
		execPath, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("failed to get executable path: %w", err)
		}
		dir = filepath.Join(filepath.Dir(execPath), "logs")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create logs directory: %w", err)
	}

	name := cfg.FileName
	if name == "" {
		name = "loganalyzer.log"
	}
	return filepath.Join(dir, name), nil
}
