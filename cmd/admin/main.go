package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"lovechat/backend/internal/api/handler"
	"lovechat/backend/internal/config"
	"lovechat/backend/internal/models"
	"lovechat/backend/internal/storage"

	"github.com/lib/pq"
	"gorm.io/gorm/logger"
)

func usage() {
	fmt.Println("Usage: admin <command> [args]")
	fmt.Println("  create-user <username> <known_as> [gender] [city] [interest,interest...]")
	fmt.Println("  token <username>")
	fmt.Println("  purge-connections")
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := storage.OpenDatabase(cfg.DBDriver, cfg.DatabaseDSN, logger.Warn)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI
	ctx := context.Background()

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "create-user":
		if len(os.Args) < 4 {
			usage()
		}
		user, err := createUser(ctx, storageSvc, os.Args[2:])
		if err != nil {
			log.Fatalf("Error creating user: %v", err)
		}
		fmt.Printf("User %s (%s) has been created.\n", user.Username, user.ID)
	case "token":
		if len(os.Args) != 3 {
			usage()
		}
		token, err := issueToken(ctx, storageSvc, handler.NewAuth(cfg.JWTSecret, cfg.TokenTTL), os.Args[2])
		if err != nil {
			log.Fatalf("Error issuing token: %v", err)
		}
		fmt.Println(token)
	case "purge-connections":
		n, err := storageSvc.ResetConnections(ctx)
		if err != nil {
			log.Fatalf("Error purging connections: %v", err)
		}
		fmt.Printf("Removed %d connections.\n", n)
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func createUser(ctx context.Context, s storage.Storage, args []string) (*models.User, error) {
	if !models.ValidUsername(models.NormalizeUsername(args[0])) {
		return nil, fmt.Errorf("invalid username %q", args[0])
	}
	user := &models.User{Username: args[0], KnownAs: args[1]}
	if len(args) > 2 {
		user.Gender = args[2]
	}
	if len(args) > 3 {
		user.City = args[3]
	}
	if len(args) > 4 {
		user.Interests = pq.StringArray(strings.Split(args[4], ","))
	}
	if err := s.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func issueToken(ctx context.Context, s storage.Storage, auth *handler.Auth, username string) (string, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	return auth.GenerateToken(user.Username)
}
