package store

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/Serena-AI862/Serena/internal/models"
)

// demoPasswordHash is "Password" hashed with bcrypt cost 10. Both demo
// accounts share it.
const demoPasswordHash = "$2b$10$9KgvmhK5QnE9KrJO2hXjNuIVm2IAp6qARTcB/9O3Nmc56L8Z0RnMy"

type demoUser struct {
	email      string
	name       string
	agencyName string
	callCount  int
	bookRate   float64
}

var demoUsers = []demoUser{
	{"johnadeyo@hotmail.com", "John Adeyo", "Golden Gate Properties", 143, 0.4},
	{"serenaai862@gmail.com", "Sarah Chen", "Serena AI Demo Agency", 98, 0.3},
}

// SeedDemoData populates two demo accounts with a week of randomized calls.
// It is a no-op when any user already exists. The check-then-act gap between
// two processes starting at once can duplicate demo rows; that is accepted.
func (s *Store) SeedDemoData(ctx context.Context) error {
	count, err := s.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("[SEED] Demo data already exists, skipping seeding")
		return nil
	}

	log.Println("[SEED] Seeding demo data...")
	now := time.Now()
	callTypes := []string{models.CallTypeInbound, models.CallTypeOutbound}

	for _, du := range demoUsers {
		user, err := s.CreateUser(ctx, du.email, demoPasswordHash, du.name, du.agencyName)
		if err != nil {
			return err
		}

		for i := 0; i < du.callCount; i++ {
			ts := now.AddDate(0, 0, -rand.Intn(7))
			ts = time.Date(ts.Year(), ts.Month(), ts.Day(),
				rand.Intn(24), rand.Intn(60), 0, 0, ts.Location())

			call := models.Call{
				UserID:            user.ID,
				PhoneNumber:       fmt.Sprintf("(%d) 555-%d", rand.Intn(900)+100, rand.Intn(9000)+1000),
				DurationSeconds:   rand.Intn(600) + 60,
				CallType:          callTypes[rand.Intn(len(callTypes))],
				AppointmentBooked: rand.Float64() < du.bookRate,
				Rating:            rand.Intn(5) + 1,
				Timestamp:         ts,
			}
			if _, err := s.CreateCall(ctx, call); err != nil {
				return err
			}
		}
	}

	log.Println("[SEED] Demo data seeded successfully")
	return nil
}
