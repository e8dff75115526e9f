// Package obslog provides the bus's ambient logging: a per-subsystem
// *slog.Logger cache configurable through environment variables, plus
// two pieces of logging that only make sense for this bus: attaching a
// resolved dispatch chain to a log line (ChainLogger) and reporting a
// slow-draining Modify call (YieldWarning). Neither of those has a
// counterpart outside this package, since they read state
// (dispatch.Resolve's output, leftright.Cell.YieldCount) that is
// specific to how this bus is built.
//
// Based on the standard library's log/slog, it supports:
//   - per-subsystem log level overrides
//   - environment variable configuration (EVENTBUS_LOG_LEVEL, EVENTBUS_LOG_FORMAT)
//   - structured logging
//
// Example:
//
//	package leftright
//
//	import "github.com/mmcshane/eventbus/internal/obslog"
//
//	var log = obslog.Logger("leftright")
//
//	func foo() {
//	    log.Debug("drain spun", "yields", n)
//	}
//
// Environment variable configuration:
//
//	# default level info, leftright module at debug
//	EVENTBUS_LOG_LEVEL=leftright=debug,info
//
//	# JSON output
//	EVENTBUS_LOG_FORMAT=json
package obslog

import (
	"io"
	"log/slog"
	"reflect"
	"sync"
)

var (
	// loggers 缓存各子系统的 Logger
	loggers sync.Map // map[string]*slog.Logger

	// handlers 缓存各子系统的 Handler（用于动态调整级别）
	handlers sync.Map // map[string]*subsystemHandler

	// globalLogger 全局默认 Logger
	globalLogger     *slog.Logger
	globalLoggerOnce sync.Once
)

// Logger 获取指定子系统的 Logger
//
// Logger 会根据 EVENTBUS_LOG_LEVEL 环境变量配置日志级别。
// 同一子系统多次调用会返回相同的 Logger 实例。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := ConfigFromEnv()
	level := cfg.LevelForSubsystem(subsystem)

	handler := newHandler(subsystem, level, cfg.Format)
	logger := slog.New(handler)

	actual, _ := loggers.LoadOrStore(subsystem, logger)
	if h, ok := handler.(*subsystemHandler); ok {
		handlers.Store(subsystem, h)
	}

	return actual.(*slog.Logger)
}

// GlobalLogger 返回全局 Logger，用于不属于特定子系统的日志，
// 或作为 fx 注入的默认 Logger。
func GlobalLogger() *slog.Logger {
	globalLoggerOnce.Do(func() {
		globalLogger = Logger("eventbus")
	})
	return globalLogger
}

// SetLevel 动态设置子系统的日志级别
func SetLevel(subsystem string, level slog.Level) {
	if h, ok := handlers.Load(subsystem); ok {
		h.(*subsystemHandler).SetLevel(level)
	}
}

// SetGlobalLevel 设置所有子系统的默认日志级别
func SetGlobalLevel(level slog.Level) {
	handlers.Range(func(_, value any) bool {
		value.(*subsystemHandler).SetLevel(level)
		return true
	})
}

// Discard 返回一个丢弃所有日志的 Logger，主要用于测试。
func Discard() *slog.Logger {
	return slog.New(DiscardHandler())
}

// With 创建带有预设属性的 Logger
func With(subsystem string, args ...any) *slog.Logger {
	return Logger(subsystem).With(args...)
}

// SetOutput 设置全局日志输出目标
//
// 已创建的 Logger 同样生效：它们通过 dynamicWriter 在每次写入时读取当前输出目标。
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}

// ChainLogger returns log with chain attached as a "chain" attribute
// of type names, most-derived first. Publish uses this to log which
// ancestor types a value's dispatch chain actually walked, without
// every call site re-deriving the same type-name slice from a
// []reflect.Type by hand. It takes the caller's own *slog.Logger,
// rather than a subsystem name, so it composes with a bus-specific
// logger installed via WithLogger instead of bypassing it.
func ChainLogger(log *slog.Logger, chain []reflect.Type) *slog.Logger {
	names := make([]string, len(chain))
	for i, t := range chain {
		names[i] = t.String()
	}
	return log.With("chain", names)
}

// YieldWarning logs, at Warn on log, that a Modify call spent yields
// scheduler-yield iterations draining a reader registry, if yields is
// at or above threshold; a non-positive threshold disables the
// warning. attrs are extra key/value pairs appended to the log line
// (e.g. a bus ID).
//
// This is the logging half of leftright.Cell's yield-warn mechanism.
// Cell.YieldCount only counts; it never logs, because arrive/depart
// and the drain loop that YieldCount observes must stay on the
// package's wait-free/bounded-blocking path, and a log call is
// neither. The caller reads YieldCount after its own Modify returns
// and reports it here instead.
func YieldWarning(log *slog.Logger, yields, threshold int64, attrs ...any) {
	if threshold <= 0 || yields < threshold {
		return
	}
	args := append([]any{"yields", yields, "threshold", threshold}, attrs...)
	log.Warn("modify spent many yields draining readers; a handler may be starving writers", args...)
}
