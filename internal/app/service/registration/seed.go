package registration

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oceanview/backend/internal/models"
	"github.com/oceanview/backend/pkg/types"
)

// defaultCatalog is the fixed service catalog. Prices are editable through
// the admin console afterwards; the set of services is not.
var defaultCatalog = []models.Service{
	{ID: types.ServiceIDAccessCard, Name: "Thẻ ra vào", Price: 55000},
	{ID: types.ServiceIDResidentCard, Name: "Thẻ cư dân", Price: 55000},
	{ID: types.ServiceIDBicycleParkingCard, Name: "Thẻ gửi xe đạp", Price: 70000},
	{ID: types.ServiceIDMotorParkingCard, Name: "Thẻ gửi xe máy", Price: 200000},
	{ID: types.ServiceIDCarParkingCard, Name: "Thẻ gửi xe ô tô", Price: 1500000},
	{ID: types.ServiceIDManagingFee, Name: "Phí quản lý", Price: 150000},
}

// SeedCatalog inserts any missing catalog rows, leaving existing prices
// untouched.
func SeedCatalog(db *gorm.DB) error {
	catalog := make([]models.Service, len(defaultCatalog))
	copy(catalog, defaultCatalog)
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&catalog).Error
}
