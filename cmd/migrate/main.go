package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Get database URL
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	// Get command
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	// Connect to database
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	_, err := conn.Exec(ctx, `
		DROP TABLE IF EXISTS elections;
		DROP TABLE IF EXISTS voters;
		DROP TABLE IF EXISTS settings;
	`)
	return err
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	_, err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS elections (
			id          UUID PRIMARY KEY,
			title       TEXT NOT NULL CHECK (title <> ''),
			description TEXT NOT NULL DEFAULT '',
			start_date  TIMESTAMPTZ,
			end_date    TIMESTAMPTZ,
			status      TEXT NOT NULL DEFAULT 'draft'
			            CHECK (status IN ('draft', 'upcoming', 'active', 'completed', 'cancelled')),
			candidates  JSONB NOT NULL DEFAULT '[]',
			voters      TEXT[] NOT NULL DEFAULT '{}',
			voted       INT NOT NULL DEFAULT 0,
			results     JSONB NOT NULL DEFAULT '{}',
			created_by  TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			CHECK (start_date IS NULL OR end_date IS NULL OR start_date < end_date)
		);

		CREATE INDEX IF NOT EXISTS idx_elections_status ON elections (status);
		CREATE INDEX IF NOT EXISTS idx_elections_end_date ON elections (end_date);

		CREATE TABLE IF NOT EXISTS voters (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			role       TEXT NOT NULL DEFAULT 'user'
			           CHECK (role IN ('user', 'admin', 'sysadmin')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS settings (
			id                   INT PRIMARY KEY CHECK (id = 1),
			maintenance_mode     BOOLEAN NOT NULL DEFAULT false,
			registration_enabled BOOLEAN NOT NULL DEFAULT true,
			updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	_, err := conn.Exec(ctx, `
		INSERT INTO voters (id, name, email, role) VALUES
			('admin-1', 'Admin', 'admin@example.com', 'admin'),
			('voter-1', 'Alice Example', 'alice@example.com', 'user'),
			('voter-2', 'Bob Example', 'bob@example.com', 'user'),
			('voter-3', 'Carol Example', 'carol@example.com', 'user')
		ON CONFLICT (id) DO NOTHING;

		INSERT INTO settings (id) VALUES (1)
		ON CONFLICT (id) DO NOTHING;

		INSERT INTO elections (id, title, description, start_date, end_date, status, candidates, created_by)
		VALUES (
			'11111111-1111-1111-1111-111111111111',
			'Board Vote 2026',
			'Annual board election',
			now() - interval '1 hour',
			now() + interval '7 days',
			'active',
			'[{"id":"c1","name":"Jane Doe","party":"Growth"},{"id":"c2","name":"John Roe","party":"Stability"}]',
			'admin-1'
		)
		ON CONFLICT (id) DO NOTHING;
	`)
	return err
}
