package config

import (
	"log"

	"nja-ledger/internal/adapters/persistence/models"
	"nja-ledger/internal/core/domain"
	"nja-ledger/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedLeader(); err != nil {
		log.Printf("⚠️ Leader seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedLeader seeds a default group leader so a fresh database has an
// administrator able to approve members.
// For development only; in production create the leader through a
// secure process.
func (s *Seeder) seedLeader() error {
	var count int64
	s.db.Model(&models.Member{}).Where("role = ?", string(domain.RoleLeader)).Count(&count)
	if count > 0 {
		return nil
	}

	hash, err := password.Hash(getEnv("SEED_LEADER_PASSWORD", "leader123456"))
	if err != nil {
		return err
	}

	leader := &models.Member{
		Name:         "Group Leader",
		Email:        getEnv("SEED_LEADER_EMAIL", "leader@nja.local"),
		PasswordHash: hash,
		Role:         string(domain.RoleLeader),
		IsActive:     true,
	}
	if err := s.db.Create(leader).Error; err != nil {
		return err
	}

	log.Printf("🌱 Seeded default leader account [%s]", leader.Email)
	return nil
}
