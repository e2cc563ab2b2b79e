package logger

import "go.uber.org/zap"

var global *zap.Logger

// Init builds the process-wide logger. Development mode enables
// console encoding and debug level.
func Init(isDev bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if isDev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	global = l
	return nil
}

// L returns the global logger. Falls back to a no-op logger when
// Init was never called (tests).
func L() *zap.Logger {
	if global == nil {
		return zap.NewNop()
	}
	return global
}

func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}
