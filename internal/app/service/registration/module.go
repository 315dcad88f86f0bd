package registration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module exposes the registration service via Fx and seeds the catalog on
// start.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Invoke(func(db *gorm.DB) error { return SeedCatalog(db) }),
)
