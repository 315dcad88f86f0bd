package apartment

import "go.uber.org/fx"

// Module exposes the apartment service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
