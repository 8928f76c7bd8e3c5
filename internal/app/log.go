package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"icut-go/internal/editor"
	"icut-go/internal/snapshot"
)

// icutHandler writes one tab-separated line per record:
//
//	<timestamp>\t<level>\t<opID>\t<message>\t<key=value ...>
//
// Values holding tabs, newlines or quotes are quoted so a record never spans
// lines. Groups prefix their keys ("batch.id=...").
type icutHandler struct {
	w      io.Writer
	opID   string
	level  slog.Level
	prefix string
	attrs  []slog.Attr
}

func (h *icutHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *icutHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.UTC().Format("2006-01-02T15:04:05Z"))
	b.WriteString("\t" + r.Level.String() + "\t" + h.opID + "\t" + r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	_, err := io.WriteString(h.w, b.String())
	return err
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, prefix, ga)
		}
		return
	}
	v := a.Value.String()
	if strings.ContainsAny(v, "\t\n\r\"") {
		v = strconv.Quote(v)
	}
	b.WriteString("\t" + prefix + a.Key + "=" + v)
}

func (h *icutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		nh.attrs = append(nh.attrs, a)
	}
	return &nh
}

func (h *icutHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.prefix = h.prefix + name + "."
	return &nh
}

// newLogger creates a structured logger that writes to both logDir/icut.log
// and stderr. It returns the open log file for cleanup.
func newLogger(logDir, opID string, level slog.Level) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "icut.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	w := io.MultiWriter(f, os.Stderr)
	return slog.New(&icutHandler{w: w, opID: opID, level: level}), f, nil
}

// slogAdapter wraps *slog.Logger for the editor, router and snapshot
// packages, which only see a small Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

var (
	_ editor.Logger   = (*slogAdapter)(nil)
	_ snapshot.Logger = (*slogAdapter)(nil)
)

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
