package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"campusreport/backend/internal/analytics"
	"campusreport/backend/internal/auth"
	"campusreport/backend/internal/config"
	"campusreport/backend/internal/logging"
	"campusreport/backend/internal/models"
	"campusreport/backend/internal/storage"
)

const usage = `Usage: admin <command> [args]

Commands:
  promote <email> <role>          set a user's role (student, authority, admin)
  set-status <complaint_id> <status>  force a complaint status (Pending, "Under Review", Resolved)
  stats                           print complaint analytics as JSON`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console"})

	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		logging.Fatal().Err(err).Msg("connect database")
	}
	// No redis needed for admin CLI
	s := storage.NewStorageService(db, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "promote":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin promote <email> <role>")
			os.Exit(1)
		}
		svc := auth.NewService(s, nil, cfg.Security.BcryptCost)
		user, err := svc.PromoteUser(ctx, os.Args[2], os.Args[3])
		if err != nil {
			logging.Fatal().Err(err).Msg("promote user")
		}
		fmt.Printf("User %s is now %s.\n", user.Email, user.Role)
	case "set-status":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-status <complaint_id> <status>")
			os.Exit(1)
		}
		if err := setStatus(ctx, s, os.Args[2], os.Args[3]); err != nil {
			logging.Fatal().Err(err).Msg("set complaint status")
		}
		fmt.Printf("Complaint %s is now %s.\n", os.Args[2], os.Args[3])
	case "stats":
		stats, err := analytics.NewService(s).GetComplaintStats(ctx, auth.Session{Role: models.RoleAdmin})
		if err != nil {
			logging.Fatal().Err(err).Msg("load stats")
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			logging.Fatal().Err(err).Msg("encode stats")
		}
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

func setStatus(ctx context.Context, s storage.Storage, id, raw string) error {
	status, ok := models.ParseStatus(raw)
	if !ok {
		return fmt.Errorf("invalid status %q", raw)
	}
	_, err := s.UpdateComplaintStatus(ctx, id, status)
	return err
}
