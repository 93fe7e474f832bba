package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bunkmate/bunkmate-backend/internal/alert"
	"github.com/bunkmate/bunkmate-backend/internal/config"
	"github.com/bunkmate/bunkmate-backend/internal/database"
	"github.com/bunkmate/bunkmate-backend/internal/logger"
	"github.com/bunkmate/bunkmate-backend/internal/model"
	"github.com/bunkmate/bunkmate-backend/internal/repository"
	"github.com/bunkmate/bunkmate-backend/internal/service"
)

const demoPassword = "password123"

type demoSubject struct {
	name     string
	attended int
	total    int
	minimum  int
}

type demoUser struct {
	email    string
	name     string
	subjects []demoSubject
}

// One subject per zone so every card state shows up in the UI.
var demoUsers = []demoUser{
	{
		email: "demo.alice@bunkmate.local",
		name:  "Alice Demo",
		subjects: []demoSubject{
			{"Physics", 18, 20, 75},
			{"Chemistry", 31, 40, 75},
			{"Mathematics", 10, 20, 75},
			{"Workshop", 0, 0, 60},
		},
	},
	{
		email: "demo.bob@bunkmate.local",
		name:  "Bob Demo",
		subjects: []demoSubject{
			{"Biology", 27, 30, 75},
			{"English", 12, 20, 80},
		},
	},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	friendRepo := repository.NewFriendRepository(pool)

	authService := service.NewAuthService(cfg, userRepo, nil, alert.NewRegistry(), log)
	friendService := service.NewFriendService(userRepo, friendRepo, subjectRepo, log)

	fmt.Println("=== Seeding demo accounts ===")

	users := make([]*model.User, 0, len(demoUsers))
	for _, du := range demoUsers {
		u, err := authService.SignUp(ctx, &model.SignUpRequest{Email: du.email, Password: demoPassword, FullName: du.name})
		if errors.Is(err, service.ErrEmailTaken) {
			fmt.Printf("%s already exists, skipping\n", du.email)
			u, err = userRepo.GetByEmail(ctx, du.email)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to load existing demo user")
			}
			users = append(users, u)
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("email", du.email).Msg("Failed to create demo user")
		}

		for _, s := range du.subjects {
			subject := &model.Subject{
				UserID:            u.ID,
				Name:              s.name,
				Attended:          s.attended,
				Total:             s.total,
				MinimumAttendance: s.minimum,
			}
			if err := subjectRepo.Create(ctx, subject); err != nil {
				log.Fatal().Err(err).Str("subject", s.name).Msg("Failed to create demo subject")
			}
			obs := subject.Evaluate()
			fmt.Printf("  %-12s %3d%% %-7s\n", s.name, obs.Percentage, obs.Zone)
		}

		fmt.Printf("Created %s (friend code %s)\n", u.Email, u.FriendCode)
		users = append(users, u)
	}

	// Alice follows Bob.
	if len(users) >= 2 {
		_, err := friendService.Add(ctx, users[0].ID, users[1].FriendCode)
		switch {
		case err == nil:
			fmt.Printf("%s now follows %s\n", users[0].Email, users[1].Email)
		case errors.Is(err, service.ErrAlreadyFriends):
		default:
			log.Fatal().Err(err).Msg("Failed to link demo friends")
		}
	}

	fmt.Printf("\nDone. Password for every demo account: %s\n", demoPassword)
}
