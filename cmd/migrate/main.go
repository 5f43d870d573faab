package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/osse101/pointshop/internal/database"
)

// dbSettings is the subset of the app configuration the migration tool needs
type dbSettings struct {
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"pointshop"`
}

func (s dbSettings) connString(dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", s.User, s.Password, s.Host, s.Port, dbName)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var settings dbSettings
	if err := envconfig.Process("", &settings); err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, os.Args[1], settings); err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func run(ctx context.Context, cmd string, settings dbSettings) error {
	if cmd == "create-db" {
		return createDatabase(ctx, settings)
	}

	pool, err := database.NewPool(settings.connString(settings.Name), 2, time.Minute, 5*time.Minute)
	if err != nil {
		return err
	}
	defer pool.Close()

	switch cmd {
	case "up":
		version, err := database.Migrate(ctx, pool)
		if err != nil {
			return err
		}
		log.Printf("Schema at version %d\n", version)
	case "down":
		version, err := database.RollbackOne(ctx, pool)
		if err != nil {
			return err
		}
		log.Printf("Schema at version %d\n", version)
	case "status":
		return database.Status(ctx, pool)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// createDatabase connects to the server's postgres database and creates the
// target database when it does not exist yet
func createDatabase(ctx context.Context, settings dbSettings) error {
	conn, err := pgx.Connect(ctx, settings.connString("postgres"))
	if err != nil {
		return fmt.Errorf("unable to connect to postgres database: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", settings.Name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		log.Printf("Database %s already exists.\n", settings.Name)
		return nil
	}

	log.Printf("Creating database %s...\n", settings.Name)
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{settings.Name}.Sanitize()); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	log.Println("Database created successfully.")
	return nil
}

func printUsage() {
	fmt.Println("Usage: migrate <command>")
	fmt.Println("Commands:")
	fmt.Println("  create-db  Create the database if it does not exist")
	fmt.Println("  up         Apply all pending migrations")
	fmt.Println("  down       Roll back the most recent migration")
	fmt.Println("  status     Show migration status")
}
