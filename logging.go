package smpp

import (
	"flag"
	"sync"

	"go.uber.org/zap"
)

var smppLogs bool

func init() {
	flag.BoolVar(&smppLogs, "smpp.logs", false, "show smpp logging")
}

// Logger provides logging interface for getting info about internals of smpp package.
type Logger interface {
	InfoF(msg string, params ...interface{})
	ErrorF(msg string, params ...interface{})
}

var (
	defaultZapOnce sync.Once
	defaultZap     *zap.SugaredLogger
)

func sharedZapLogger() *zap.SugaredLogger {
	defaultZapOnce.Do(func() {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		defaultZap = logger.Sugar()
	})
	return defaultZap
}

// DefaultLogger prints logs through zap if the smpp.logs flag is set,
// and is silent otherwise.
type DefaultLogger struct{}

// InfoF implements Logger interface.
func (dl DefaultLogger) InfoF(msg string, params ...interface{}) {
	if smppLogs {
		sharedZapLogger().Infof(msg, params...)
	}
}

// ErrorF implements Logger interface.
func (dl DefaultLogger) ErrorF(msg string, params ...interface{}) {
	if smppLogs {
		sharedZapLogger().Errorf(msg, params...)
	}
}
