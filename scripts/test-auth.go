package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/denisAlshanov/mediagrab/internal/config"
	"github.com/denisAlshanov/mediagrab/internal/services/auth"
)

func main() {
	subject := flag.String("subject", "frontend", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	fmt.Println("API Auth Test")
	fmt.Println("=============")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.API.AuthEnabled() {
		fmt.Println("API_KEY and JWT_SECRET not set - /api/info and /api/download are open")
		return
	}

	if cfg.API.APIKey != "" {
		fmt.Println("X-API-Key authentication: enabled")
	}

	if cfg.API.JWTSecret == "" {
		fmt.Println("JWT_SECRET not set - bearer tokens are not accepted")
		return
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey: cfg.API.JWTSecret,
		Issuer:    cfg.API.JWTIssuer,
	})

	token, err := jwtService.GenerateToken(*subject, *ttl)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	// Round trip through validation to catch issuer or secret mismatches
	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		log.Fatalf("Generated token failed validation: %v", err)
	}

	fmt.Printf("Subject: %s\n", claims.Subject)
	fmt.Printf("Expires: %s\n", claims.ExpiresAt.Time.Format(time.RFC3339))
	fmt.Println()
	fmt.Printf("Authorization: Bearer %s\n", token)
}
