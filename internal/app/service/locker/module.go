package locker

import "go.uber.org/fx"

// Module exposes the locker service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
