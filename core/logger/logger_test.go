package logger

import "testing"

func TestNopDiscards(t *testing.T) {
	l := Nop()
	if l == nil {
		t.Fatal("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("error")
}
