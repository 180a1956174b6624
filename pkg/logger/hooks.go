package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LevelHook sends each log level to its own writer and formatter.
// Info goes to stdout as a bare message,
// everything else goes to stderr with timestamps.
type LevelHook struct {
	Writers    map[logrus.Level]io.Writer
	Formatters map[logrus.Level]logrus.Formatter
	LogLevels  []logrus.Level
}

// NewLevelHook initializes the hook with the default routing
func NewLevelHook() *LevelHook {
	timestamped := &logrus.TextFormatter{
		FullTimestamp: true,
	}
	return &LevelHook{
		Writers: map[logrus.Level]io.Writer{
			logrus.DebugLevel: os.Stderr,
			logrus.InfoLevel:  os.Stdout,
			logrus.WarnLevel:  os.Stderr,
			logrus.ErrorLevel: os.Stderr,
			logrus.FatalLevel: os.Stderr,
			logrus.PanicLevel: os.Stderr,
		},
		Formatters: map[logrus.Level]logrus.Formatter{
			logrus.DebugLevel: timestamped,
			logrus.InfoLevel:  &MessageFormatter{},
			logrus.WarnLevel:  timestamped,
			logrus.ErrorLevel: timestamped,
			logrus.FatalLevel: timestamped,
			logrus.PanicLevel: timestamped,
		},
		LogLevels: logrus.AllLevels,
	}
}

// Levels defines on which log levels this hook would trigger
func (h *LevelHook) Levels() []logrus.Level {
	return h.LogLevels
}

// Fire is called by logrus when a log entry needs to be logged
func (h *LevelHook) Fire(entry *logrus.Entry) error {
	writer, ok := h.Writers[entry.Level]
	if !ok {
		writer = os.Stdout
	}

	formatter, ok := h.Formatters[entry.Level]
	if !ok {
		formatter = h.Formatters[logrus.InfoLevel]
	}

	b, err := formatter.Format(entry)
	if err != nil {
		return err
	}

	_, err = writer.Write(b)
	return err
}

// MessageFormatter outputs only the message
type MessageFormatter struct{}

func (f *MessageFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return []byte(entry.Message + "\n"), nil
}
