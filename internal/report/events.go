package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// EventLog writes step and verdict events as JSON lines, asynchronously,
// into date-organized rotated files under the result directory.
type EventLog struct {
	baseDir   string
	maxSizeMB int
	writeCh   chan any
	done      chan struct{}
	wg        sync.WaitGroup

	mu          sync.Mutex
	currentDate string
	logger      *lumberjack.Logger
}

// NewEventLog creates an async event log writer.
func NewEventLog(baseDir string, bufferSize, maxSizeMB int) *EventLog {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 50
	}
	l := &EventLog{
		baseDir:   baseDir,
		maxSizeMB: maxSizeMB,
		writeCh:   make(chan any, bufferSize),
		done:      make(chan struct{}),
	}
	l.wg.Add(1)
	go l.writeLoop()
	return l
}

// Write queues a record for async writing. Never blocks: when the buffer is
// full the record is dropped with a warning.
func (l *EventLog) Write(record any) error {
	select {
	case l.writeCh <- record:
		return nil
	case <-l.done:
		return fmt.Errorf("event log is closed")
	default:
		slog.Warn("event log buffer full, dropping record")
		return fmt.Errorf("buffer full")
	}
}

// Close shuts down the writer and flushes pending records.
func (l *EventLog) Close() error {
	close(l.done)

	timeout := time.After(5 * time.Second)
	for {
		select {
		case record := <-l.writeCh:
			l.writeRecord(record)
		case <-timeout:
			slog.Warn("event log close timeout, some records may be lost")
			goto done
		default:
			goto done
		}
	}

done:
	l.wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logger != nil {
		return l.logger.Close()
	}
	return nil
}

func (l *EventLog) writeLoop() {
	defer l.wg.Done()
	for {
		select {
		case record := <-l.writeCh:
			l.writeRecord(record)
		case <-l.done:
			return
		}
	}
}

func (l *EventLog) writeRecord(record any) {
	data, err := json.Marshal(record)
	if err != nil {
		slog.Error("failed to marshal event record", "error", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	date := time.Now().UTC().Format("2006-01-02")
	if date != l.currentDate || l.logger == nil {
		l.rotateForDate(date)
	}
	if l.logger == nil {
		return
	}

	if _, err := l.logger.Write(append(data, '\n')); err != nil {
		slog.Error("failed to write event record", "error", err)
	}
}

func (l *EventLog) rotateForDate(date string) {
	if l.logger != nil {
		if err := l.logger.Close(); err != nil {
			slog.Debug("event log rotate close failed", "error", err)
		}
	}

	filename := filepath.Join(l.baseDir, "events", date+".jsonl")
	l.logger = &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    l.maxSizeMB,
		MaxBackups: 30,
		MaxAge:     30,
		LocalTime:  false,
	}
	l.currentDate = date
	slog.Info("opened event log file", "file", filename)
}
