package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	contractDomain "github.com/drivehub/service-rental/internal/domain/contract"
)

// RentalStateModel is a row of the rental_states reference table.
type RentalStateModel struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"not null;size:30;uniqueIndex"`
}

func (RentalStateModel) TableName() string { return "rental_states" }

// schemaStatements are applied after AutoMigrate. They mirror the parts of
// migrations/ that gorm tags cannot express.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`CREATE UNIQUE INDEX IF NOT EXISTS rental_states_lower_name_idx ON rental_states (lower(name))`,
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'contracts_state_fkey') THEN
			ALTER TABLE contracts ADD CONSTRAINT contracts_state_fkey
				FOREIGN KEY (state) REFERENCES rental_states (name);
		END IF;
	END $$`,
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'contracts_period_check') THEN
			ALTER TABLE contracts ADD CONSTRAINT contracts_period_check CHECK (start_date < end_date);
		END IF;
	END $$`,
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'contracts_no_overlap') THEN
			ALTER TABLE contracts ADD CONSTRAINT contracts_no_overlap
				EXCLUDE USING gist (car_id WITH =, daterange(start_date, end_date, '[)') WITH &&)
				WHERE (state IN ('PENDING', 'CONFIRMED', 'ACTIVE'));
		END IF;
	END $$`,
}

// EnsureSchema creates the development schema with gorm AutoMigrate, seeds
// the state registry and installs the overlap exclusion constraint.
func EnsureSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&RentalStateModel{},
		&CarModel{},
		&ClientModel{},
		&DocumentModel{},
		&ContractModel{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	if err := SeedRentalStates(db); err != nil {
		return err
	}

	for _, stmt := range schemaStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}

// SeedRentalStates inserts any registry state missing from rental_states.
func SeedRentalStates(db *gorm.DB) error {
	states := contractDomain.States()
	rows := make([]RentalStateModel, len(states))
	for i, s := range states {
		rows[i] = RentalStateModel{ID: i + 1, Name: string(s)}
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("seed rental states: %w", err)
	}
	return nil
}
