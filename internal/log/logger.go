package log

import (
	"go.uber.org/zap"
)

var base *zap.Logger = zap.NewNop()

// Init builds the process logger: production JSON encoding when prod,
// developer console output otherwise.
func Init(prod bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if prod {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	base = l
	return l, nil
}

// L returns the process logger. Safe before Init: a nop logger.
func L() *zap.Logger { return base }

func Sync() { _ = base.Sync() }
