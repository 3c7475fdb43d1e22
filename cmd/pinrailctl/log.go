package main

import (
	"github.com/sirupsen/logrus"
)

var log logger

type logger struct {
	*logrus.Logger
}

func init() {
	log = logger{
		Logger: logrus.New(),
	}
}

func (l *logger) Warn(message string, keyValuePairs ...interface{}) {
	l.WithFields(fields(keyValuePairs)).Warn(message)
}

func (l *logger) Info(message string, keyValuePairs ...interface{}) {
	l.WithFields(fields(keyValuePairs)).Info(message)
}

func (l *logger) Debug(message string, keyValuePairs ...interface{}) {
	l.WithFields(fields(keyValuePairs)).Debug(message)
}

// fields pairs up keys and values. A non-string key or a trailing unpaired
// value is dropped; CLI logging is best-effort and must never panic.
func fields(keyValuePairs []interface{}) logrus.Fields {
	ff := logrus.Fields{}
	for i := 0; i+1 < len(keyValuePairs); i += 2 {
		key, ok := keyValuePairs[i].(string)
		if !ok {
			continue
		}
		ff[key] = keyValuePairs[i+1]
	}
	return ff
}
