package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/bunkmate/bunkmate-backend/internal/alert"
	"github.com/bunkmate/bunkmate-backend/internal/config"
	"github.com/bunkmate/bunkmate-backend/internal/database"
	"github.com/bunkmate/bunkmate-backend/internal/logger"
	"github.com/bunkmate/bunkmate-backend/internal/model"
	"github.com/bunkmate/bunkmate-backend/internal/repository"
	"github.com/bunkmate/bunkmate-backend/internal/service"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	// Sign-up never touches sessions, so no Redis connection is needed.
	userRepo := repository.NewUserRepository(pool)
	authService := service.NewAuthService(cfg, userRepo, nil, alert.NewRegistry(), log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		os.Exit(1)
	}

	fmt.Print("Enter Full Name (optional): ")
	name, _ := reader.ReadString('\n')

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		os.Exit(1)
	}
	password := string(bytePassword)
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		os.Exit(1)
	}

	// ─── Create ────────────────────────────────────────────────────────
	user, err := authService.SignUp(ctx, &model.SignUpRequest{
		Email:    email,
		Password: password,
		FullName: strings.TrimSpace(name),
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			fmt.Printf("Error: %s is already registered\n", email)
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("\nSuccess! User %s created with ID %s and friend code %s\n", user.Email, user.ID, user.FriendCode)
}
