package main

import (
	"context"
	"fmt"
	"log"

	"hotel/internal/config"
	"hotel/internal/database"
	"hotel/internal/domain"
	"hotel/internal/pkg/logger"
	"hotel/internal/repository"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := logger.New(cfg.AppEnv, cfg.LogLevel)
	if config.IsProdLike(cfg.AppEnv) {
		lg.Fatal("refusing to seed a prod-like environment")
	}

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.WithError(err).Fatal("DB connection failed")
	}
	lg.Info("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		lg.WithError(err).Fatal("AutoMigrate failed")
	}

	// Cleanup old data (children first)
	lg.Info("Cleaning old data...")
	for _, table := range []string{
		"notification_logs", "room_nights", "booking_services", "booking_rooms",
		"bookings", "services", "rooms", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			lg.WithError(err).Fatalf("clean %s failed", table)
		}
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	rooms := repository.NewRoomRepository(db)
	services := repository.NewServiceRepository(db)

	// ================== USERS ==================
	mustUser(ctx, users, "admin@hotel.local", "admin12345", domain.RoleAdmin, "Administrator")
	mustUser(ctx, users, "desk@hotel.local", "staff12345", domain.RoleStaff, "Front Desk")
	for i, email := range []string{"anna@mail.local", "boris@mail.local", "chen@mail.local"} {
		mustUser(ctx, users, email, "guest123", domain.RoleGuest, fmt.Sprintf("Guest %d", i+1))
	}
	lg.Info("Users created: admin@hotel.local / admin12345, desk@hotel.local / staff12345, guests / guest123")

	// ================== ROOMS ==================
	types := []struct {
		t     domain.RoomType
		price float64
	}{
		{domain.RoomSingle, 1000},
		{domain.RoomDouble, 1600},
		{domain.RoomTriple, 2100},
		{domain.RoomQuad, 2600},
	}
	for floor := 1; floor <= 3; floor++ {
		for i, rt := range types {
			r := &domain.Room{
				RoomNumber:    fmt.Sprintf("%d%02d", floor, i+1),
				RoomType:      rt.t,
				PricePerNight: rt.price,
				Status:        domain.RoomAvailable,
				Amenities:     []string{"wifi", "tv"},
			}
			if rt.t == domain.RoomQuad {
				r.Amenities = append(r.Amenities, "balcony")
			}
			if err := rooms.Create(ctx, r); err != nil {
				lg.WithError(err).Fatal("room create failed")
			}
		}
	}
	lg.Info("Rooms created: 12")

	// ================== SERVICES ==================
	for _, s := range []domain.Service{
		{Name: "Breakfast", Price: 15, Description: "Buffet breakfast per stay"},
		{Name: "Airport transfer", Price: 40},
		{Name: "Late check-out", Price: 25},
		{Name: "Spa access", Price: 60},
	} {
		s := s
		if err := services.Create(ctx, &s); err != nil {
			lg.WithError(err).Fatal("service create failed")
		}
	}
	lg.Info("Services created: 4")
	lg.Info("Seed completed")
}

func mustUser(ctx context.Context, repo *repository.UserRepository, email, password string, role domain.UserRole, name string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       domain.UserActive,
		Name:         name,
	}
	if err := repo.Create(ctx, u); err != nil {
		log.Fatalf("create user %s: %v", email, err)
	}
}
