package main

import (
	"context"
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before creating (fresh start)")
	clearData := flag.Bool("clear-data", false, "Delete all rows (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	log.Printf("Setting up schema (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *clearData {
		log.Println("Clearing existing data...")
		if err := clearAllData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared")
	}
}

// runSchema creates every table the repositories expect. Statements
// are idempotent so the tool can run against a live database.
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	createProjects := `
		CREATE TABLE IF NOT EXISTS ` + tables.Projects + ` (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			author_id UUID NOT NULL,
			author_name TEXT NOT NULL DEFAULT '',
			genre TEXT NOT NULL DEFAULT '',
			target_word_count INTEGER NOT NULL DEFAULT 0,
			is_collaborative BOOLEAN NOT NULL DEFAULT FALSE,
			is_public BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createProjects); err != nil {
		return err
	}

	createChapters := `
		CREATE TABLE IF NOT EXISTS ` + tables.Chapters + ` (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL REFERENCES ` + tables.Projects + `(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL,
			word_count INTEGER NOT NULL DEFAULT 0,
			last_edited_by UUID,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createChapters); err != nil {
		return err
	}
	createChapterIndex := `
		CREATE INDEX IF NOT EXISTS ` + tables.Chapters + `_project_order_idx
		ON ` + tables.Chapters + ` (project_id, sort_order, id)
	`
	if _, err := pool.Exec(ctx, createChapterIndex); err != nil {
		return err
	}

	createCharacters := `
		CREATE TABLE IF NOT EXISTS ` + tables.Characters + ` (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL REFERENCES ` + tables.Projects + `(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT '',
			age INTEGER,
			appearance TEXT NOT NULL DEFAULT '',
			personality TEXT NOT NULL DEFAULT '',
			background TEXT NOT NULL DEFAULT '',
			goals TEXT NOT NULL DEFAULT '',
			conflicts TEXT NOT NULL DEFAULT '',
			relationships TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			image_ref TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE(project_id, name)
		)
	`
	if _, err := pool.Exec(ctx, createCharacters); err != nil {
		return err
	}

	createCollaborators := `
		CREATE TABLE IF NOT EXISTS ` + tables.Collaborators + ` (
			project_id UUID NOT NULL REFERENCES ` + tables.Projects + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			role TEXT NOT NULL DEFAULT 'contributor',
			can_edit BOOLEAN NOT NULL DEFAULT TRUE,
			can_delete BOOLEAN NOT NULL DEFAULT FALSE,
			can_invite BOOLEAN NOT NULL DEFAULT FALSE,
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (project_id, user_id)
		)
	`
	if _, err := pool.Exec(ctx, createCollaborators); err != nil {
		return err
	}

	createDocuments := `
		CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			word_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createDocuments); err != nil {
		return err
	}

	createDocumentShares := `
		CREATE TABLE IF NOT EXISTS ` + tables.DocumentShares + ` (
			document_id UUID NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			PRIMARY KEY (document_id, user_id)
		)
	`
	if _, err := pool.Exec(ctx, createDocumentShares); err != nil {
		return err
	}

	createImportedDocuments := `
		CREATE TABLE IF NOT EXISTS ` + tables.ImportedDocuments + ` (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			project_id UUID REFERENCES ` + tables.Projects + `(id) ON DELETE SET NULL,
			title TEXT NOT NULL,
			file_ref TEXT,
			source_url TEXT,
			format TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			file_size BIGINT NOT NULL DEFAULT 0,
			word_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createImportedDocuments); err != nil {
		return err
	}

	return nil
}

// dropAllTables drops in dependency order
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.ImportedDocuments,
		tables.DocumentShares,
		tables.Documents,
		tables.Collaborators,
		tables.Characters,
		tables.Chapters,
		tables.Projects,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  dropped %s", table)
	}

	return nil
}

// clearAllData deletes rows but keeps the schema
func clearAllData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.ImportedDocuments,
		tables.DocumentShares,
		tables.Documents,
		tables.Collaborators,
		tables.Characters,
		tables.Chapters,
		tables.Projects,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	return nil
}
