package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"civic-registry/internal/common/database"
	"civic-registry/internal/config"
	"civic-registry/internal/repository"
)

// apply-migration applies the embedded schema, or the SQL files given as
// arguments, to the configured database.
func main() {
	dbCfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	migrations, err := loadMigrations(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to read migrations: %v", err)
	}

	db, err := database.NewPostgresDB(dbCfg)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer database.Close(db)

	fmt.Printf("Connected to database: %s\n\n", dbCfg.Database)

	ctx := context.Background()
	for i, m := range migrations {
		fmt.Printf("Applying %d/%d: %s\n", i+1, len(migrations), m.Name)
		if _, err := db.ExecContext(ctx, m.SQL); err != nil {
			log.Fatalf("Failed to apply %s: %v", m.Name, err)
		}
	}
	fmt.Println("Migration completed successfully")
}

func loadMigrations(files []string) ([]repository.Migration, error) {
	if len(files) == 0 {
		return repository.Migrations()
	}
	out := make([]repository.Migration, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		out = append(out, repository.Migration{Name: filepath.Base(f), SQL: string(b)})
	}
	return out, nil
}
