package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"todo_webapp/internal/db"
	"todo_webapp/internal/logger"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations")
	flag.Parse()

	names, err := db.MigrationNames()
	if err != nil {
		logger.Fatal("list migrations", "error", err)
	}
	if !*apply {
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	pool := db.Connect(dsn)
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		logger.Fatal("migrate", "error", err)
	}
	for _, name := range names {
		fmt.Printf("applied %s\n", name)
	}
}
