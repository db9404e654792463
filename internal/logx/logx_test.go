package logx

import "testing"

func TestNew_ProductionDoesNotPanic(t *testing.T) {
	logger := New(false)
	if logger == nil {
		t.Fatal("expected a non-nil logger")
	}
	logger.Sync()
}

func TestNew_DevelopmentDoesNotPanic(t *testing.T) {
	logger := New(true)
	if logger == nil {
		t.Fatal("expected a non-nil logger")
	}
	logger.Sync()
}

func TestNop_DiscardsWithoutPanicking(t *testing.T) {
	logger := Nop()
	logger.Info("discarded")
	logger.Sync()
}
