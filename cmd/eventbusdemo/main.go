// Package main is a small demo and integration-test harness for the
// eventbus module: it wires the bus through fx, declares a three-level
// dispatch chain, subscribes a handler at each level, and publishes on
// an interval so the polymorphic delivery and (optionally) the
// Prometheus metrics can be observed live.
//
// 使用方法:
//
//	go run ./cmd/eventbusdemo -interval 500ms
//	go run ./cmd/eventbusdemo -metrics-addr :9090
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/mmcshane/eventbus"
	"github.com/mmcshane/eventbus/internal/obsmetrics"
)

// PingEvent is the root of the demo's three-level dispatch chain.
type PingEvent struct {
	eventbus.Chained[PingEvent, eventbus.Root]
	Seq int
}

// PongEvent sits below PingEvent: a handler subscribed to PingEvent
// also receives every PongEvent published.
type PongEvent struct {
	eventbus.Chained[PongEvent, PingEvent]
	PingEvent
	RTT time.Duration
}

// EchoEvent sits below PongEvent, making the chain Echo -> Pong -> Ping
// three levels deep: a handler subscribed to PingEvent also receives
// every EchoEvent published.
type EchoEvent struct {
	eventbus.Chained[EchoEvent, PongEvent]
	PongEvent
	Payload string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "eventbusdemo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	interval := flag.Duration("interval", time.Second, "publish interval")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address")
	shards := flag.Int("shards", 0, "if nonzero, use a sharded reader registry with this many shards (must be a power of two)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var fxOpts []fx.Option

	if *shards > 0 {
		fxOpts = append(fxOpts, eventbus.SupplyOption(eventbus.WithShardedRegistry(*shards)))
	}

	if *metricsAddr != "" {
		registry := prometheus.NewRegistry()
		collector := obsmetrics.New("demo")
		collector.MustRegister(registry)
		fxOpts = append(fxOpts,
			eventbus.SupplyOption(eventbus.WithMetrics(collector)),
			fx.Invoke(func(lc fx.Lifecycle) {
				srv := &http.Server{
					Addr:    *metricsAddr,
					Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
				}
				lc.Append(fx.Hook{
					OnStart: func(context.Context) error {
						go func() { _ = srv.ListenAndServe() }()
						fmt.Printf("metrics listening on %s\n", *metricsAddr)
						return nil
					},
					OnStop: srv.Shutdown,
				})
			}),
		)
	}

	fxOpts = append(fxOpts,
		eventbus.Module,
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.Invoke(registerHandlersAndPublisher(*interval)),
	)

	app := fx.New(fxOpts...)
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("starting app: %w", err)
	}
	<-ctx.Done()
	fmt.Println("shutting down")
	return app.Stop(context.Background())
}

func registerHandlersAndPublisher(interval time.Duration) func(fx.Lifecycle, *eventbus.Bus) {
	return func(lc fx.Lifecycle, bus *eventbus.Bus) {
		pingSub := eventbus.Subscribe(bus, func(e PingEvent) {
			fmt.Printf("ping handler saw seq=%d\n", e.Seq)
		})
		pongSub := eventbus.Subscribe(bus, func(e PongEvent) {
			fmt.Printf("pong handler saw seq=%d rtt=%s\n", e.Seq, e.RTT)
		})
		echoSub := eventbus.Subscribe(bus, func(e EchoEvent) {
			fmt.Printf("echo handler saw seq=%d payload=%q\n", e.Seq, e.Payload)
		})

		stop := make(chan struct{})
		done := make(chan struct{})

		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go publishLoop(bus, interval, stop, done)
				return nil
			},
			OnStop: func(context.Context) error {
				close(stop)
				<-done
				bus.Unsubscribe(pingSub)
				bus.Unsubscribe(pongSub)
				bus.Unsubscribe(echoSub)
				return nil
			},
		})
	}
}

func publishLoop(bus *eventbus.Bus, interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seq int
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			start := time.Now()
			eventbus.Publish(bus, PingEvent{Seq: seq})
			pong := PongEvent{PingEvent: PingEvent{Seq: seq}, RTT: time.Since(start)}
			eventbus.Publish(bus, pong)
			eventbus.Publish(bus, EchoEvent{PongEvent: pong, Payload: fmt.Sprintf("echo-%d", seq)})
			seq++
		}
	}
}
