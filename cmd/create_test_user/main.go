package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"todo_webapp/internal/db"
	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"
	"todo_webapp/internal/session"
)

func main() {
	username := flag.String("username", "alice", "username")
	email := flag.String("email", "alice@example.com", "email")
	password := flag.String("password", "Password123", "password")
	del := flag.Bool("delete", false, "delete the user and all of their tasks")
	flag.Parse()

	// expects DATABASE_URL env var
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	existing, err := repo.GetByUsername(ctx, *username)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Fatal("lookup user failed", "error", err)
	}

	if *del {
		if existing == nil {
			logger.Info("user does not exist", "username", *username)
			return
		}
		if err := repo.Delete(ctx, existing.ID); err != nil {
			logger.Fatal("delete user failed", "error", err)
		}
		logger.Info("user deleted", "id", existing.ID, "username", existing.Username)
		return
	}

	if existing != nil {
		logger.Info("user already exists", "id", existing.ID, "username", existing.Username)
		return
	}

	auth := service.NewAuthService(repo, session.NewMemoryStore(), service.AuthOptions{})
	u, ferrs, err := auth.Register(ctx, service.SignupForm{
		Username:  *username,
		Email:     *email,
		Password1: *password,
		Password2: *password,
	})
	if err != nil {
		logger.Fatal("create user failed", "error", err)
	}
	if len(ferrs) > 0 {
		logger.Fatal("invalid user", "field", ferrs[0].Field, "error", ferrs.First())
	}

	logger.Info("user created", "id", u.ID, "username", u.Username, "email", u.Email)
}
