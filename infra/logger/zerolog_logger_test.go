package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := New("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("resolver", &buf)
	l.Infof("step %d", 7)
	out := buf.String()
	if !strings.Contains(out, `"component":"resolver"`) {
		t.Errorf("missing component field: %s", out)
	}
	if !strings.Contains(out, "step 7") {
		t.Errorf("missing message: %s", out)
	}
}

func TestZerologLoggerWithLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("quiet", &buf)
	zl, ok := l.(*ZerologLogger)
	if !ok {
		t.Fatalf("unexpected logger type %T", l)
	}
	leveled := zl.WithLevel("error")
	leveled.Infof("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info leaked through error level: %s", buf.String())
	}
	leveled.Errorf("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("error missing: %s", buf.String())
	}
}
