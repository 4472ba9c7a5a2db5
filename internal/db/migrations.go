package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_state') THEN
			CREATE TYPE contract_state AS ENUM ('DRAFT', 'IN_PROGRESS', 'CLOSED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'visit_state') THEN
			CREATE TYPE visit_state AS ENUM ('PENDING', 'DONE', 'CANCELLED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'visit_kind') THEN
			CREATE TYPE visit_kind AS ENUM ('SCHEDULED', 'EXTRA');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		address TEXT,
		email VARCHAR(255),
		phone VARCHAR(64),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS visit_folders (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		parent_id UUID REFERENCES visit_folders(id) ON DELETE CASCADE,
		client_id UUID REFERENCES clients(id),
		folder_month DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_visit_folders_parent_id ON visit_folders (parent_id) WHERE parent_id IS NOT NULL;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_visit_folders_parent_month ON visit_folders (parent_id, folder_month) WHERE folder_month IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		client_id UUID NOT NULL REFERENCES clients(id),
		name VARCHAR(255) NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		visits_per_month INT NOT NULL CHECK (visits_per_month > 0),
		state contract_state NOT NULL DEFAULT 'DRAFT',
		root_folder_id UUID REFERENCES visit_folders(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (end_date >= start_date)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_state ON contracts (state);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_client_id ON contracts (client_id);`,
	`CREATE SEQUENCE IF NOT EXISTS visit_reference_seq START 1;`,
	`CREATE TABLE IF NOT EXISTS visits (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		reference VARCHAR(64) NOT NULL,
		contract_id UUID REFERENCES contracts(id) ON DELETE CASCADE,
		client_id UUID NOT NULL REFERENCES clients(id),
		folder_id UUID REFERENCES visit_folders(id) ON DELETE SET NULL,
		visit_month DATE NOT NULL,
		sequence_no INT NOT NULL DEFAULT 1,
		visit_date DATE NOT NULL,
		state visit_state NOT NULL DEFAULT 'PENDING',
		kind visit_kind NOT NULL DEFAULT 'SCHEDULED',
		engineer_name VARCHAR(255),
		problem_type VARCHAR(255),
		engineer_comments TEXT,
		address TEXT,
		extra_reason TEXT,
		report_document_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_visits_reference ON visits (reference);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_visits_contract_month_seq
		ON visits (contract_id, visit_month, sequence_no)
		WHERE contract_id IS NOT NULL AND state <> 'CANCELLED';`,
	`CREATE INDEX IF NOT EXISTS idx_visits_contract_month ON visits (contract_id, visit_month) WHERE contract_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_visits_folder_id ON visits (folder_id) WHERE folder_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_visits_state ON visits (state);`,
	`CREATE TABLE IF NOT EXISTS visit_documents (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		folder_id UUID NOT NULL REFERENCES visit_folders(id) ON DELETE CASCADE,
		visit_id UUID REFERENCES visits(id),
		mime_type VARCHAR(128) NOT NULL DEFAULT 'application/pdf',
		content BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_visit_documents_folder_id ON visit_documents (folder_id);`,
	`CREATE INDEX IF NOT EXISTS idx_visit_documents_visit_id ON visit_documents (visit_id) WHERE visit_id IS NOT NULL;`,
	// Shared root for visits without a contract; month subfolders are
	// created under it on demand.
	`INSERT INTO visit_folders (name)
		SELECT 'Non-contracted'
		WHERE NOT EXISTS (
			SELECT 1 FROM visit_folders WHERE name = 'Non-contracted' AND parent_id IS NULL AND client_id IS NULL
		);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
