package logger

import "sync"

var warned sync.Map

// WarnOnce logs a warning the first time key is seen in this process.
func WarnOnce(key string, msg string, args ...any) {
	if _, loaded := warned.LoadOrStore(key, struct{}{}); loaded {
		return
	}
	Warn(msg, args...)
}
