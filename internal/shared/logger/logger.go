package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// GetLogger returns the shared zap.Logger instance, using singleton pattern creates
// only one reusable instance for the whole process, development config by default
func GetLogger() *zap.Logger {
	once.Do(func() {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic("failed logger setup : " + err.Error())
		}
	})
	return logger
}
