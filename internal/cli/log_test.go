package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		log   func(*log.Logger)
		want  string // empty when nothing should be written
	}{
		{
			name:  "run summary at info",
			level: log.InfoLevel,
			log:   func(l *log.Logger) { l.Info("directions resolved", "unresolved", 0) },
			want:  "unresolved=0",
		},
		{
			name:  "network debug hidden at info",
			level: log.InfoLevel,
			log:   func(l *log.Logger) { l.Debug("network corrected", "changed", 2) },
		},
		{
			name:  "network debug shown with verbose",
			level: log.DebugLevel,
			log:   func(l *log.Logger) { l.Debug("network corrected", "changed", 2) },
			want:  "changed=2",
		},
		{
			name:  "outlet warning at info",
			level: log.InfoLevel,
			log:   func(l *log.Logger) { l.Warn("no outlet found") },
			want:  "no outlet found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newLogger(&buf, tt.level))
			got := buf.String()
			if tt.want == "" {
				if got != "" {
					t.Errorf("expected no output, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("output %q does not contain %q", got, tt.want)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Checked 25 cells")

	out := buf.String()
	if !strings.Contains(out, "Checked 25 cells (") || !strings.Contains(out, "s)") {
		t.Errorf("progress line = %q, want message with elapsed time", out)
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("ordering built")
	if buf.Len() != 0 {
		t.Fatal("debug should be filtered at info level")
	}
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("ordering built", "eligible", 9)
	if !strings.Contains(buf.String(), "eligible=9") {
		t.Errorf("debug should be logged after SetLogLevel(LogDebug), got %q", buf.String())
	}
}
