package config

import "go.uber.org/zap"

// NewLogger returns a development logger when debug is set and a JSON
// production logger otherwise. It never returns nil.
func NewLogger(debug bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}
