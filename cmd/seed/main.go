package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
	"github.com/waiogamez/mirafloresplus-core/internal/db"
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

	if err := db.EnsureSchema(context.Background(), pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	log.Println("schema ready")

	gofakeit.Seed(time.Now().UnixNano())

	professionals, err := seedProfessionals(context.Background(), pool, 40)
	if err != nil {
		log.Fatalf("seed professionals: %v", err)
	}
	patients, err := seedPatients(context.Background(), pool, 2000)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, professionals, patients, 500); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

type seededProfessional struct {
	ID        uuid.UUID
	Name      string
	Specialty string
}

type seededPatient struct {
	ID   uuid.UUID
	Name string
}

func seedProfessionals(ctx context.Context, pool *pgxpool.Pool, count int) ([]seededProfessional, error) {
	log.Printf("seeding %d professionals", count)

	specialties := []string{
		appointment.SpecialtyGeneralMedicine,
		"Cardiología",
		"Dermatología",
		"Pediatría",
		"Ginecología",
		"Traumatología",
		"Psicología",
		"Nutrición",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	result := make([]seededProfessional, 0, count)
	for i := 0; i < count; i++ {
		p := seededProfessional{
			ID:        uuid.New(),
			Name:      gofakeit.Name(),
			Specialty: specialties[gofakeit.Number(0, len(specialties)-1)],
		}

		// Roughly a third of professionals get custom rates; the rest
		// fall back to the system defaults.
		var presencial, videollamada *int64
		if gofakeit.Number(0, 2) == 0 {
			p1 := int64(gofakeit.Number(120, 300)) * 100
			p2 := int64(gofakeit.Number(80, 200)) * 100
			presencial, videollamada = &p1, &p2
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO professionals (id, name, specialty, presencial_fee_cents, videollamada_fee_cents, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, p.ID, p.Name, p.Specialty, presencial, videollamada)
		if err != nil {
			return nil, err
		}

		result = append(result, p)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("professionals seeded")
	return result, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) ([]seededPatient, error) {
	log.Printf("seeding %d patients", count)

	const batchSize = 500

	result := make([]seededPatient, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			p := seededPatient{ID: uuid.New(), Name: gofakeit.Name()}
			email := gofakeit.Email()

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
			`, p.ID, p.Name, email)
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}

			result = append(result, p)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	return result, nil
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, professionals []seededProfessional, patients []seededPatient, count int) error {
	log.Printf("seeding %d appointments", count)

	facilities := []string{"Sede Miraflores", "Sede San Isidro", "Sede Surco"}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		prof := professionals[gofakeit.Number(0, len(professionals)-1)]
		patient := patients[gofakeit.Number(0, len(patients)-1)]

		modality := appointment.ModalityPresencial
		if gofakeit.Bool() {
			modality = appointment.ModalityTelemedicina
		}

		intake := appointment.Classify(modality, prof.Specialty)

		date := time.Now().AddDate(0, 0, gofakeit.Number(0, 14)).Format(appointment.DateLayout)
		slot := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "15:00", "15:30", "16:00"}[gofakeit.Number(0, 7)]

		facility := ""
		if modality == appointment.ModalityPresencial {
			facility = facilities[gofakeit.Number(0, len(facilities)-1)]
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO appointments (id, affiliate_id, affiliate_name, professional_id, professional_name,
				visit_date, visit_time, modality, specialty, status, facility, notes, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, '', 'seed', now())
		`, uuid.New(), patient.ID, patient.Name, prof.ID, prof.Name,
			date, slot, modality, prof.Specialty, intake.InitialStatus, facility)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("appointments seeded")
	return nil
}
