package recipebox

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EventLogger records state change events.
type EventLogger interface {
	LogEvent(event ChangeEvent) error
}

// NewEventLogFilePath returns a timestamped log file path under dir, tagged with
// a cleaned up session name so logs from different entry points are easy to tell apart.
func NewEventLogFilePath(dir, session string) string {
	name := strings.NewReplacer(":", "_", "/", "_", " ", "_").Replace(strings.ToLower(session))
	return filepath.Join(dir, fmt.Sprintf("%d.%s.json", time.Now().Unix(), name))
}

// FileEventLogger accumulates events and writes them as one JSON document on Flush.
type FileEventLogger struct {
	events []ChangeEvent
	writer io.Writer
}

func NewFileEventLogger(writer io.Writer) *FileEventLogger {
	return &FileEventLogger{
		events: make([]ChangeEvent, 0),
		writer: writer,
	}
}

// LogEvent buffers the event (does not flush immediately)
func (l *FileEventLogger) LogEvent(event ChangeEvent) error {
	l.events = append(l.events, event)
	return nil
}

// Flush writes all buffered events to the writer
func (l *FileEventLogger) Flush() error {
	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"session": map[string]any{
			"timestamp": time.Now(),
			"events":    l.events,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal event log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write event log: %w", err)
	}

	l.events = l.events[:0]
	return nil
}

type NoOpEventLogger struct{}

func NewNoOpEventLogger() *NoOpEventLogger {
	return &NoOpEventLogger{}
}

func (nop *NoOpEventLogger) LogEvent(event ChangeEvent) error {
	return nil
}

// StdoutEventLogger writes each event as a JSON line (for Lambda/CloudWatch)
type StdoutEventLogger struct {
	out io.Writer
}

func NewStdoutEventLogger() *StdoutEventLogger {
	return &StdoutEventLogger{out: os.Stdout}
}

func (l *StdoutEventLogger) LogEvent(event ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}
