package eventbus

import (
	"context"

	"go.uber.org/fx"
)

// Module is the fx wiring for the bus: it provides a ready-to-use
// *Bus, collecting any Options other modules contribute to the
// "eventbus-options" value group, and registers a lifecycle hook that
// closes the bus on application shutdown.
var Module = fx.Module("eventbus",
	fx.Provide(newBusFromParams),
	fx.Invoke(registerLifecycle),
)

// busParams 总线构造参数
type busParams struct {
	fx.In

	// Opts 其他模块贡献给 eventbus-options group 的配置项
	Opts []Option `group:"eventbus-options"`
}

func newBusFromParams(p busParams) *Bus {
	return New(p.Opts...)
}

// lifecycleInput 生命周期注册输入
type lifecycleInput struct {
	fx.In

	LC  fx.Lifecycle
	Bus *Bus
}

func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return input.Bus.Close()
		},
	})
}

// SupplyOption returns an fx.Option that contributes opt to the bus's
// "eventbus-options" value group, for wiring Module's configuration
// from another fx module without this package depending on it.
func SupplyOption(opt Option) fx.Option {
	return fx.Supply(fx.Annotate(opt, fx.ResultTags(`group:"eventbus-options"`)))
}
