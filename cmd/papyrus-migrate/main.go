package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	// Import database drivers as needed
	// Note: We only import lib/pq for postgres. SQLite driver is imported
	// by golang-migrate/migrate/v4/database/sqlite internally via modernc.org/sqlite
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/papyrusworks/papyrus/internal/migrate"
)

func main() {
	// Command-line flags
	driver := flag.String("driver", "postgres", "Database driver (postgres|sqlite)")
	dsn := flag.String("dsn", "", "Database connection string (or set PAPYRUS_DB_DSN)")
	status := flag.Bool("status", false, "Print the current migration version and exit")
	down := flag.Bool("down", false, "Roll back the most recently applied migration")
	help := flag.Bool("help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Papyrus Database Migration Tool\n\n")
		fmt.Fprintf(os.Stderr, "Applies the Papyrus schema migrations without needing a config file,\n")
		fmt.Fprintf(os.Stderr, "for CI pipelines and container entrypoints. Supports both PostgreSQL\n")
		fmt.Fprintf(os.Stderr, "and SQLite databases.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n\n")
		fmt.Fprintf(os.Stderr, "  PostgreSQL:\n")
		fmt.Fprintf(os.Stderr, "    %s -driver=postgres -dsn=\"host=localhost user=postgres password=postgres dbname=papyrus port=5432 sslmode=disable\"\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  SQLite:\n")
		fmt.Fprintf(os.Stderr, "    %s -driver=sqlite -dsn=\"papyrus.db\"\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  Check the schema version:\n")
		fmt.Fprintf(os.Stderr, "    %s -status -dsn=\"papyrus.db\" -driver=sqlite\n\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	// The DSN usually carries credentials, so the environment is the
	// friendlier place for it in CI.
	if *dsn == "" {
		*dsn = os.Getenv("PAPYRUS_DB_DSN")
	}

	// Validate required flags
	if *dsn == "" {
		log.Fatal("Error: -dsn flag (or PAPYRUS_DB_DSN) is required\n\nRun with -help for usage information.")
	}

	if *driver != "postgres" && *driver != "sqlite" {
		log.Fatalf("Error: unsupported driver '%s' (must be 'postgres' or 'sqlite')\n", *driver)
	}

	if *status && *down {
		log.Fatal("Error: -status and -down are mutually exclusive")
	}

	// Connect to database
	log.Printf("Connecting to %s database...\n", *driver)
	sqlDB, err := sql.Open(*driver, *dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v\n", err)
	}
	defer sqlDB.Close()

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v\n", err)
	}
	log.Printf("✓ Connected to database\n")

	switch {
	case *status:
		version, dirty, err := migrate.GetMigrationVersion(sqlDB, *driver)
		if err != nil {
			log.Fatalf("Failed to read migration version: %v\n", err)
		}
		log.Printf("Migration version: %d, dirty: %t\n", version, dirty)

	case *down:
		log.Printf("Rolling back most recent migration...\n")
		if err := migrate.RollbackMigration(sqlDB, *driver); err != nil {
			log.Fatalf("Rollback failed: %v\n", err)
		}
		log.Printf("✅ Rollback completed successfully!\n")

	default:
		log.Printf("Running migrations...\n")
		if err := migrate.RunMigrations(sqlDB, *driver); err != nil {
			log.Fatalf("Migration failed: %v\n", err)
		}
		log.Printf("✅ All migrations completed successfully!\n")
	}
}
