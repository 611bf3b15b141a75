// Package logruslog adapts a logrus entry to repositorycache.Logger.
package logruslog

import (
	"github.com/goliatone/go-task-countcache/repositorycache"
	"github.com/sirupsen/logrus"
)

type Logger struct{ E *logrus.Entry }

// New wraps l, tagging every line with the given component name.
func New(l *logrus.Logger, component string) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return Logger{E: l.WithField("component", component)}
}

func (l Logger) Debug(msg string, f repositorycache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l Logger) Info(msg string, f repositorycache.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f repositorycache.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f repositorycache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
