package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medcal/scheduling/internal/db"
	"github.com/medcal/scheduling/internal/schedule"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedDoctors(context.Background(), pool, 100); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedPatients(context.Background(), pool, 9000); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d doctors", count)

	specializations := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		spec := specializations[gofakeit.Number(0, len(specializations)-1)]

		// Roughly a third of the doctors get an explicit schedule; the
		// rest rely on the default policy.
		var hours []byte
		if gofakeit.Number(0, 2) == 0 {
			m := customHours()
			hours, err = json.Marshal(m)
			if err != nil {
				return err
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, first_name, last_name, specialization, is_active, working_hours, created_at, updated_at)
			VALUES ($1, $2, $3, $4, true, $5, now(), now())
		`, id, gofakeit.FirstName(), gofakeit.LastName(), spec, hours)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("doctors seeded")
	return nil
}

// customHours builds a narrowed weekday schedule, e.g. 09:00-17:00 with a
// random day off.
func customHours() schedule.WorkingHoursMap {
	w := schedule.WorkingHours{
		Start: schedule.Clock{Hour: gofakeit.Number(8, 10)},
		End:   schedule.Clock{Hour: gofakeit.Number(15, 18)},
	}
	m := schedule.WorkingHoursMap{
		time.Monday:    w,
		time.Tuesday:   w,
		time.Wednesday: w,
		time.Thursday:  w,
		time.Friday:    w,
	}
	dayOff := time.Weekday(gofakeit.Number(int(time.Monday), int(time.Friday)))
	delete(m, dayOff)
	return m
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			email := gofakeit.Email()

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, first_name, last_name, email, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, id, gofakeit.FirstName(), gofakeit.LastName(), email)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return nil
}
