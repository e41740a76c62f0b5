package applog

import "testing"

func TestSetDebugTogglesDebugEnabled(t *testing.T) {
	l := New("test", false)
	if l.DebugEnabled() {
		t.Fatal("expected debug to start disabled")
	}
	l.SetDebug(true)
	if !l.DebugEnabled() {
		t.Fatal("expected debug to be enabled after SetDebug(true)")
	}
}

func TestNopLoggerNeverPanics(t *testing.T) {
	l := NewNop()
	l.Debugf("x %d", 1)
	l.Infof("x %d", 1)
	l.Warnf("x %d", 1)
	l.Errorf("x %d", 1)
	l.SetDebug(true)
	if l.DebugEnabled() {
		t.Fatal("nop logger debug should stay disabled")
	}
}
