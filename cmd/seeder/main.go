//cmd/seeder/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/studiovx/outreach-backend/internal/config"
	"github.com/studiovx/outreach-backend/internal/db"
)

func main() {
	cfg, err := config.NewLoadedConfig()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	seedFiles := []string{
		"sql/schema.sql",
		"sql/seed_sites.sql",
		"sql/seed_scripts.sql",
	}

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("failed to read %s: %v", file, err)
		}

		_, err = conn.Exec(string(content))
		if err != nil {
			log.Fatalf("failed to execute %s: %v", file, err)
		}
		fmt.Printf("Seeded: %s\n", file)
	}

	fmt.Println("Database seeding completed successfully!")
}
