package tcp

import (
	"context"

	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
)

type lifecycleInput struct {
	fx.In

	LC        fx.Lifecycle
	Transport *Transport
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("transport/tcp",
		fx.Supply(DefaultConfig()),
		fx.Provide(
			New,
			func(t *Transport) pkgif.Transport { return t },
		),
		fx.Invoke(func(in lifecycleInput) {
			in.LC.Append(fx.Hook{
				OnStop: func(context.Context) error { return in.Transport.Close() },
			})
		}),
	)
}
