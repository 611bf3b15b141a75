// Package zaplog adapts a zap logger to repositorycache.Logger.
package zaplog

import (
	"sort"

	"github.com/goliatone/go-task-countcache/repositorycache"
	"go.uber.org/zap"
)

type Logger struct{ L *zap.Logger }

// New wraps l. A nil logger is replaced with zap.NewNop.
func New(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return Logger{L: l}
}

func (z Logger) Debug(msg string, f repositorycache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z Logger) Info(msg string, f repositorycache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z Logger) Warn(msg string, f repositorycache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z Logger) Error(msg string, f repositorycache.Fields)  { z.L.Error(msg, zf(f)...) }

func zf(f repositorycache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
