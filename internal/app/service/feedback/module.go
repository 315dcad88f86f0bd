package feedback

import "go.uber.org/fx"

// Module exposes the feedback service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
