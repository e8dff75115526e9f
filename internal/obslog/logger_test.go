package obslog

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

type chainLoggerTestBase struct{}
type chainLoggerTestDerived struct{}

func TestSetOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)

	log := Logger("test")
	log.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected log message in buffer, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected key=value in buffer, got: %s", output)
	}
	if !strings.Contains(output, "subsystem=test") {
		t.Errorf("expected subsystem=test in buffer, got: %s", output)
	}
}

func TestSetOutput_ExistingLogger(t *testing.T) {
	log := Logger("test2")

	buf := &bytes.Buffer{}
	SetOutput(buf)

	log.Info("after switch", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "after switch") {
		t.Errorf("expected log message in buffer, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected key=value in buffer, got: %s", output)
	}
}

func TestConfigFromEnv_ParsesSubsystemOverrides(t *testing.T) {
	ResetConfig()
	t.Setenv("EVENTBUS_LOG_LEVEL", "leftright=debug,warn")
	t.Cleanup(ResetConfig)

	cfg := ConfigFromEnv()
	if cfg.LevelForSubsystem("leftright").String() != "DEBUG" {
		t.Errorf("expected leftright at debug, got %v", cfg.LevelForSubsystem("leftright"))
	}
	if cfg.LevelForSubsystem("dispatch").String() != "WARN" {
		t.Errorf("expected default level warn for unlisted subsystem, got %v", cfg.LevelForSubsystem("dispatch"))
	}
}

func TestChainLogger_AttachesTypeNames(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(buf, nil))

	chain := []reflect.Type{
		reflect.TypeOf(chainLoggerTestDerived{}),
		reflect.TypeOf(chainLoggerTestBase{}),
	}
	ChainLogger(log, chain).Info("dispatch skipped for a chain element")

	output := buf.String()
	if !strings.Contains(output, "chainLoggerTestDerived") {
		t.Errorf("expected derived type name in chain attribute, got: %s", output)
	}
	if !strings.Contains(output, "chainLoggerTestBase") {
		t.Errorf("expected base type name in chain attribute, got: %s", output)
	}
}

func TestChainLogger_PreservesCallerLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(buf, nil)).With("bus", "b1")

	ChainLogger(log, nil).Info("msg")

	output := buf.String()
	if !strings.Contains(output, "bus=b1") {
		t.Errorf("expected caller-supplied attribute to survive, got: %s", output)
	}
	if !strings.Contains(output, "chain=[]") {
		t.Errorf("expected empty chain attribute for nil chain, got: %s", output)
	}
}

func TestYieldWarning_LogsAtOrAboveThreshold(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(buf, nil))

	YieldWarning(log, 10, 10, "bus", "b1")

	output := buf.String()
	if !strings.Contains(output, "level=WARN") {
		t.Errorf("expected a warning to be logged, got: %s", output)
	}
	if !strings.Contains(output, "yields=10") || !strings.Contains(output, "threshold=10") {
		t.Errorf("expected yields/threshold attributes, got: %s", output)
	}
	if !strings.Contains(output, "bus=b1") {
		t.Errorf("expected extra attrs to be included, got: %s", output)
	}
}

func TestYieldWarning_SilentBelowThreshold(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(buf, nil))

	YieldWarning(log, 9, 10)

	if buf.Len() != 0 {
		t.Errorf("expected no log output below threshold, got: %s", buf.String())
	}
}

func TestYieldWarning_DisabledByNonPositiveThreshold(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(buf, nil))

	YieldWarning(log, 1000, 0)

	if buf.Len() != 0 {
		t.Errorf("expected no log output when threshold disables the warning, got: %s", buf.String())
	}
}
