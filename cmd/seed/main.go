package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/dogshouse/dogs-api/config"
	"github.com/dogshouse/dogs-api/internal/domain/entity"
	"github.com/dogshouse/dogs-api/pkg/helpers"
)

type seedDog struct {
	name         string
	owner        string
	breed        string
	breedType    string
	popularity   float64
	intelligence float64
	photo        string
}

var sampleDogs = []seedDog{
	{"Rex", "Marta", "German Shepherd", entity.BreedTypePurebred, 9, 9, "rex.jpg"},
	{"Bella", "none", "Labrador Retriever", entity.BreedTypePurebred, 10, 7, "bella.jpg"},
	{"Lupo", "none", "Czechoslovakian Wolfdog", entity.BreedTypeWild, 4, 8, "lupo.jpg"},
	{"Maya", "Jonas", "Border Collie", entity.BreedTypePurebred, 8, 10, "maya.jpg"},
	{"Dingo", "none", "Carolina Dog", entity.BreedTypeWild, 3, 6, "dingo.jpg"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "admin@dogshouse.dev"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (name, email, role, password_hash, password_changed_at, email_verify)
		VALUES ($1, $2, 'admin', $3, $4, TRUE)
		ON CONFLICT (email) DO UPDATE SET role = 'admin'
		RETURNING id
	`, "Admin", email, hash, time.Now().Add(-time.Second)).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", id, email, password)

	for _, d := range sampleDogs {
		if _, err := db.Exec(`
			INSERT INTO dogs (name, owner, breed, breed_type, popularity, intelligence, photo)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (name) DO NOTHING
		`, d.name, d.owner, d.breed, d.breedType, d.popularity, d.intelligence, d.photo); err != nil {
			log.Fatalf("failed to seed dog %s: %v", d.name, err)
		}
	}
	fmt.Printf("seeded %d dogs\n", len(sampleDogs))
}
