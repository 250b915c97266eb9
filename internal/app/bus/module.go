package bus

import "go.uber.org/fx"

// Module provides the shared Bus for dependency injection.
var Module = fx.Options(
	fx.Provide(New),
)
