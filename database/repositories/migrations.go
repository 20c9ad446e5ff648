package repositories

import (
	"github.com/l3montree-dev/vulntrack/database/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.SBOM{},
		&models.Component{},
		&models.Vulnerability{},
		&models.ComponentVulnerability{},
		&models.ComponentDependency{},
		&models.Config{},
	)
}
