package main

import (
	"context"
	"fmt"
	"time"

	"caresync-api/internal/config"
	"caresync-api/internal/database"
	"caresync-api/internal/domain"
	"caresync-api/internal/observability/logger"
	"caresync-api/internal/repo"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo data",
	Long:  `Create a demo coordinator, carer, client and sample shifts for local development`,
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

const seedPassword = "caresync-demo"

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.IsDev() {
		return fmt.Errorf("seed only runs with APP_ENV=dev")
	}

	log, err := logger.New(cfg.OTELServiceName, "info")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	userRepo := repo.NewUserRepository(pool)
	clientRepo := repo.NewClientRepository(pool)
	shiftRepo := repo.NewShiftRepository(pool)

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	coordinator := &domain.User{
		ID:           uuid.New(),
		FirstName:    "Dana",
		LastName:     "Coordinator",
		Email:        "coordinator@caresync.local",
		PasswordHash: string(hash),
		IsConfirmed:  true,
	}
	if err := userRepo.Create(ctx, coordinator); err != nil {
		return fmt.Errorf("failed to create demo coordinator: %w", err)
	}

	carer := &domain.User{
		ID:           uuid.New(),
		FirstName:    "Sam",
		LastName:     "Carer",
		Email:        "carer@caresync.local",
		PasswordHash: string(hash),
		IsConfirmed:  true,
	}
	if err := userRepo.Create(ctx, carer); err != nil {
		return fmt.Errorf("failed to create demo carer: %w", err)
	}

	client := &domain.Client{
		ID:            uuid.New(),
		FirstName:     "Alex",
		LastName:      "Morgan",
		CoordinatorID: coordinator.ID,
	}
	if err := clientRepo.Create(ctx, client); err != nil {
		return fmt.Errorf("failed to create demo client: %w", err)
	}

	if _, err := clientRepo.AddCarer(ctx, client.ID, carer.ID); err != nil {
		return fmt.Errorf("failed to add demo carer to care team: %w", err)
	}

	// One closed shift with documentation, one upcoming. Both carry the
	// sample flag so the cancellation rules stay permissive for demo data.
	now := time.Now().Truncate(time.Hour)
	shifts := []*domain.Shift{
		{
			ID:               uuid.New(),
			ClientID:         client.ID,
			CoordinatorID:    coordinator.ID,
			CarerID:          carer.ID,
			ShiftStart:       now.Add(-72 * time.Hour),
			ShiftEnd:         now.Add(-64 * time.Hour),
			CoordinatorNotes: "Morning routine, medication at 9am.",
			IsSample:         true,
		},
		{
			ID:               uuid.New(),
			ClientID:         client.ID,
			CoordinatorID:    coordinator.ID,
			CarerID:          carer.ID,
			ShiftStart:       now.Add(24 * time.Hour),
			ShiftEnd:         now.Add(32 * time.Hour),
			CoordinatorNotes: "Physio appointment at 2pm, taxi booked.",
			IsSample:         true,
		},
	}

	tx, err := shiftRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, shift := range shifts {
		if err := shiftRepo.CreateTx(ctx, tx, shift); err != nil {
			return fmt.Errorf("failed to create demo shift: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit demo shifts: %w", err)
	}

	if err := shiftRepo.SetShiftNotes(ctx, shifts[0].ID, "All tasks completed. Alex was in good spirits and ate well."); err != nil {
		return fmt.Errorf("failed to write demo shift notes: %w", err)
	}
	if err := shiftRepo.SetHandoverNotes(ctx, shifts[0].ID, "Low on medication, pharmacy pickup needed this week."); err != nil {
		return fmt.Errorf("failed to write demo handover notes: %w", err)
	}

	log.Info(ctx, "demo data seeded",
		zap.String("coordinator_email", coordinator.Email),
		zap.String("carer_email", carer.Email),
		zap.String("client_id", client.ID.String()),
	)

	fmt.Println("✓ Demo data seeded")
	fmt.Printf("  coordinator: %s / %s\n", coordinator.Email, seedPassword)
	fmt.Printf("  carer:       %s / %s\n", carer.Email, seedPassword)
	return nil
}
