// Seeds a compliance reviewer account so the review endpoints are usable
// on a fresh deployment.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"aegis/internal/config"
	errs "aegis/internal/errors"
	"aegis/internal/models"
	"aegis/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	reviewerEmail := os.Getenv("REVIEWER_EMAIL")
	reviewerPassword := os.Getenv("REVIEWER_PASSWORD")
	reviewerName := config.GetEnv("REVIEWER_NAME", "Compliance Reviewer")

	if reviewerEmail == "" || reviewerPassword == "" {
		log.Fatal("REVIEWER_EMAIL and REVIEWER_PASSWORD must be set in environment")
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer func() {
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("Failed to close Redis connection: %v", err)
			}
		}
	}()

	users := repositories.NewUserRepository(repositories.DB)

	_, err := users.GetByEmail(context.Background(), reviewerEmail)
	if err == nil {
		log.Println("Reviewer account already exists")
		return
	}
	if !errors.Is(err, errs.ErrRecordNotFound) {
		log.Fatal("Failed to look up reviewer:", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reviewerPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	reviewer := models.User{
		Email:    reviewerEmail,
		Password: string(hashedPassword),
		Name:     reviewerName,
		Role:     "reviewer",
	}
	if err := users.Create(context.Background(), &reviewer); err != nil {
		log.Fatal("Failed to create reviewer account:", err)
	}

	log.Println("Reviewer account created")
}
