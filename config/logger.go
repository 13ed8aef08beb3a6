package config

import (
	"os"
	"strings"

	"github.com/op/go-logging"
	"gorm.io/gorm/logger"
)

// 初始化Logger，level為DEBUG、INFO、WARNING等字串
func InitLogger(logLevel string) error {
	baseBackend := logging.NewLogBackend(os.Stdout, "", 0)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} %{level:.5s}     %{message}`,
	)
	backendFormatter := logging.NewBackendFormatter(baseBackend, format)

	backendLeveled := logging.AddModuleLevel(backendFormatter)
	logLevelCode, err := logging.LogLevel(logLevel)
	if err != nil {
		return err
	}
	backendLeveled.SetLevel(logLevelCode, "")

	logging.SetBackend(backendLeveled)
	return nil
}

// 將服務的log level對應到gorm的SQL logger
func GormLogLevel(logLevel string) logger.LogLevel {
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		return logger.Info
	case "CRITICAL":
		return logger.Silent
	case "ERROR":
		return logger.Error
	default:
		return logger.Warn
	}
}
