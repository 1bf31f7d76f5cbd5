package models

import (
	"log"

	"github.com/comexdata/customs_backend/config"
)

// MigrateTable runs AutoMigrate for every engine table.
// IMPORTANT: AutoMigrate can run DDL that blocks tables; production deploys
// can disable it on startup via SKIP_MIGRATIONS and run it as a job instead.
func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&User{},
		&Operation{},
		&OperationStatusHistory{},
		&Declaration{},
		&TariffLine{},
		&CrossingResult{},
		&Discrepancy{},
		&GattForm{},
	)
	if err != nil {
		log.Printf("auto migrate failed: %v", err)
	}
}
