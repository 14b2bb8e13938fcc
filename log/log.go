// Copyright 2019 The go-ledgerd Authors
// This file is part of the go-ledgerd library.
//
// The go-ledgerd library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ledgerd library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ledgerd library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides module-scoped leveled logging. Every package obtains
// its own logger through NewModuleLogger and emits messages with alternating
// key/value context pairs.
package log

import (
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Lvl mirrors the CLI verbosity scale: 0=crit .. 5=trace.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

// Logger writes leveled key/value records tagged with the owning module.
type Logger interface {
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})

	// NewWith returns a child logger carrying the given context on every record.
	NewWith(ctx ...interface{}) Logger
}

var (
	mu        sync.Mutex
	baseLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	traceOn   bool
	root      *zap.SugaredLogger
)

func init() {
	root = newRoot()
}

func newRoot() *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	if isatty.IsTerminal(os.Stderr.Fd()) {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(colorable.NewColorableStderr()),
		baseLevel,
	)
	return zap.New(core).Sugar()
}

// ChangeGlobalLogLevel applies the CLI verbosity to every module logger.
func ChangeGlobalLogLevel(lvl Lvl) {
	mu.Lock()
	defer mu.Unlock()
	traceOn = lvl >= LvlTrace
	switch lvl {
	case LvlCrit, LvlError:
		baseLevel.SetLevel(zapcore.ErrorLevel)
	case LvlWarn:
		baseLevel.SetLevel(zapcore.WarnLevel)
	case LvlInfo:
		baseLevel.SetLevel(zapcore.InfoLevel)
	default:
		baseLevel.SetLevel(zapcore.DebugLevel)
	}
}

// NewModuleLogger returns the logger for the given module.
func NewModuleLogger(mi ModuleID) Logger {
	return &moduleLogger{s: root.With("module", mi.String())}
}

type moduleLogger struct {
	s *zap.SugaredLogger
}

func (l *moduleLogger) Trace(msg string, ctx ...interface{}) {
	if traceOn {
		l.s.Debugw(msg, ctx...)
	}
}

func (l *moduleLogger) Debug(msg string, ctx ...interface{}) { l.s.Debugw(msg, ctx...) }
func (l *moduleLogger) Info(msg string, ctx ...interface{})  { l.s.Infow(msg, ctx...) }
func (l *moduleLogger) Warn(msg string, ctx ...interface{})  { l.s.Warnw(msg, ctx...) }
func (l *moduleLogger) Error(msg string, ctx ...interface{}) { l.s.Errorw(msg, ctx...) }
func (l *moduleLogger) Crit(msg string, ctx ...interface{})  { l.s.Fatalw(msg, ctx...) }

func (l *moduleLogger) NewWith(ctx ...interface{}) Logger {
	return &moduleLogger{s: l.s.With(ctx...)}
}
