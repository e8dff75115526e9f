package eventbus

import (
	"log/slog"

	"github.com/mmcshane/eventbus/internal/leftright"
	"github.com/mmcshane/eventbus/internal/obsmetrics"
)

// Option 用户配置选项函数
type Option func(*options)

// options 内部选项结构
type options struct {
	// 读者注册表配置
	registryKind leftright.RegistryKind
	shards       int

	// 记录池，为订阅表各类型桶的分配提供容量提示
	pool RecordPool

	// 可选的 Prometheus 指标收集器
	metrics *obsmetrics.Collector

	// 日志
	logger *slog.Logger

	// 写入阻塞告警阈值
	yieldWarnThreshold int64
}

func defaultOptions() *options {
	return &options{
		registryKind:       leftright.SingleCounter,
		shards:             0,
		pool:               nil,
		logger:             nil,
		yieldWarnThreshold: 10000,
	}
}

// WithShardedRegistry 使用 n 个分片的读者注册表，而不是默认的单计数器
// 注册表。当大量 goroutine 并发调用 Publish 时可以降低竞争；n 必须是 2
// 的幂。典型取值范围是 16 到 64。
func WithShardedRegistry(n int) Option {
	return func(o *options) {
		o.registryKind = leftright.Sharded
		o.shards = n
	}
}

// WithRecordPool 提供一个自定义的订阅记录分配器/回收池，替代默认的
// 原子高水位线实现。
func WithRecordPool(p RecordPool) Option {
	return func(o *options) { o.pool = p }
}

// WithMetrics attaches a Prometheus collector to the bus. Subscribe,
// Unsubscribe, and Publish report into it; a bus with no collector
// (the default) pays only a nil check per call.
func WithMetrics(c *obsmetrics.Collector) Option {
	return func(o *options) { o.metrics = c }
}

// WithLogger 覆盖该总线实例使用的默认日志记录器。
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithYieldWarnThreshold 设置 Modify 在排空某个注册表时，触发一次慢消
// 费者告警所需的最少自旋让步次数。
func WithYieldWarnThreshold(n int64) Option {
	return func(o *options) { o.yieldWarnThreshold = n }
}
