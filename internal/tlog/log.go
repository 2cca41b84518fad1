// Package tlog is the sandbox's instrumentation log: a filtered sink that
// prefixes every line with wall time, thread, source and time since start,
// and keeps per-thread indentation and timed regions.
//
// A Log is created once at startup, handed to whoever needs it and closed
// explicitly on shutdown. All methods are safe for concurrent use.
package tlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Clock reports time since the sandbox started.
type Clock interface {
	Elapsed() time.Duration
}

// Options configures a Log.
type Options struct {
	// Path is the log file, truncated on open. When empty Writer is used.
	Path   string
	Writer io.Writer

	// Flush writes every line through to the file immediately. Otherwise
	// output is buffered until Flush or Close.
	Flush bool
	// Echo mirrors every line to Stdout (os.Stdout when nil).
	Echo   bool
	Stdout io.Writer

	Include Source
	Exclude Source
	Level   logrus.Level

	Timestamps bool
	MaxThreads int

	Clock    Clock
	ThreadID func() uint32
	Now      func() time.Time
}

// Log is a source filtered, per-thread aware log sink backed by logrus.
type Log struct {
	mu sync.Mutex

	out     *logrus.Logger
	file    *os.File
	buf     *bufio.Writer
	stdout  io.Writer
	echo    bool
	flush   bool
	include Source
	exclude Source
	closed  bool

	threads  *threadTable
	clock    Clock
	threadID func() uint32
	now      func() time.Time
}

type zeroClock struct{}

func (zeroClock) Elapsed() time.Duration { return 0 }

// New opens the log described by opts and writes the column header.
func New(opts Options) (*Log, error) {
	l := &Log{
		echo:     opts.Echo,
		flush:    opts.Flush,
		include:  opts.Include,
		exclude:  opts.Exclude,
		threads:  newThreadTable(opts.MaxThreads),
		clock:    opts.Clock,
		threadID: opts.ThreadID,
		now:      opts.Now,
		stdout:   opts.Stdout,
	}
	if l.clock == nil {
		l.clock = zeroClock{}
	}
	if l.threadID == nil {
		l.threadID = currentThreadID
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.stdout == nil {
		l.stdout = os.Stdout
	}

	sink := opts.Writer
	if opts.Path != "" {
		f, err := os.Create(opts.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "open log file %s", opts.Path)
		}
		l.file = f
		sink = f
	}
	if sink == nil {
		return nil, errors.New("log needs a file path or a writer")
	}
	l.buf = bufio.NewWriter(sink)

	var out io.Writer = l.buf
	if l.echo {
		out = io.MultiWriter(l.buf, l.stdout)
	}
	l.out = &logrus.Logger{
		Out:       out,
		Formatter: &lineFormatter{timestamps: opts.Timestamps},
		Hooks:     make(logrus.LevelHooks),
		Level:     opts.Level,
		ExitFunc:  os.Exit,
	}

	if _, err := l.buf.WriteString(header); err != nil {
		return nil, l.abandon(errors.Wrap(err, "write log header"))
	}
	if l.flush {
		if err := l.flushLocked(); err != nil {
			return nil, l.abandon(err)
		}
	}
	return l, nil
}

// abandon closes the file of a Log that failed to open and returns err.
func (l *Log) abandon(err error) error {
	if l.file != nil {
		err = errors.CombineErrors(err, l.file.Close())
		l.file = nil
	}
	return err
}

// Enabled reports whether lines from src pass the include and exclude masks.
// Exclusion wins over inclusion.
func (l *Log) Enabled(src Source) bool {
	return l.include&src != 0 && l.exclude&src == 0
}

// Printf writes an info level line for src.
func (l *Log) Printf(src Source, format string, args ...interface{}) {
	l.Logf(logrus.InfoLevel, src, format, args...)
}

func (l *Log) Debugf(src Source, format string, args ...interface{}) {
	l.Logf(logrus.DebugLevel, src, format, args...)
}

func (l *Log) Warnf(src Source, format string, args ...interface{}) {
	l.Logf(logrus.WarnLevel, src, format, args...)
}

func (l *Log) Errorf(src Source, format string, args ...interface{}) {
	l.Logf(logrus.ErrorLevel, src, format, args...)
}

// Logf writes a line at the given level for src, if both filters allow it.
func (l *Log) Logf(level logrus.Level, src Source, format string, args ...interface{}) {
	if !l.Enabled(src) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.emitLocked(level, src, fmt.Sprintf(format, args...))
}

func (l *Log) emitLocked(level logrus.Level, src Source, msg string) {
	if l.closed || !l.Enabled(src) || !l.out.IsLevelEnabled(level) {
		return
	}

	tid := l.threadID()
	elapsed := l.clock.Elapsed()
	fields := logrus.Fields{
		fieldThread:  tid,
		fieldSource:  src,
		fieldElapsed: elapsed,
	}
	if state := l.threads.get(tid); state != nil {
		fields[fieldIndent] = state.indent
		stamps := make([]regionStamp, 0, len(state.regions))
		for _, region := range state.regions {
			stamps = append(stamps, regionStamp{name: region.name, elapsed: elapsed - region.start})
		}
		fields[fieldRegions] = stamps
	}

	l.out.WithTime(l.now()).WithFields(fields).Log(level, msg)

	if l.flush {
		// A failed flush surfaces again from Flush or Close.
		_ = l.flushLocked()
	}
}

// Indent increases the indentation of the calling thread's lines.
func (l *Log) Indent() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, err := l.threads.getOrCreate(l.threadID())
	if err != nil {
		return err
	}
	state.indent++
	return nil
}

// Unindent reverses one Indent. It never goes below zero.
func (l *Log) Unindent() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if state := l.threads.get(l.threadID()); state != nil && state.indent > 0 {
		state.indent--
	}
}

// TimedRegionStart opens a named region on the calling thread and writes
// START. Until the region ends every line of this thread carries the time
// spent in it.
func (l *Log) TimedRegionStart(src Source, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, err := l.threads.getOrCreate(l.threadID())
	if err != nil {
		return err
	}
	state.regions = append(state.regions, timedRegion{
		name:  name,
		src:   src,
		start: l.clock.Elapsed(),
	})
	l.emitLocked(logrus.InfoLevel, src, "START")
	return nil
}

// TimedRegionEnd closes regions of the calling thread, innermost first,
// until the named region has been closed. Each closed region writes END.
func (l *Log) TimedRegionEnd(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.threads.get(l.threadID())
	if state == nil {
		return
	}

	found := false
	for !found && len(state.regions) > 0 {
		region := state.regions[len(state.regions)-1]
		l.emitLocked(logrus.InfoLevel, region.src, "END")
		found = region.name == name
		state.regions = state.regions[:len(state.regions)-1]
	}
}

// Flush pushes buffered output to the file.
func (l *Log) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flushLocked()
}

func (l *Log) flushLocked() error {
	if err := l.buf.Flush(); err != nil {
		return errors.Wrap(err, "flush log")
	}
	return nil
}

// Close flushes the log and closes the file it owns. Later writes are
// dropped.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	err := l.flushLocked()
	if l.file != nil {
		err = errors.CombineErrors(err, l.file.Close())
	}
	return err
}
