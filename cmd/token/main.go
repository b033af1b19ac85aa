// Command token prints a signed bearer token for local testing against a
// running API. It reads the same config as cmd/api so the secret matches.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jwalitptl/salon-api/config"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/auth"
	"github.com/jwalitptl/salon-api/pkg/logger"
)

func main() {
	sub := flag.Int64("sub", 0, "user id carried in the token")
	role := flag.String("role", string(model.RoleAdmin), "admin, provider, reception or client")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	log := logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Output: os.Stderr, Console: true, TimeFormat: time.RFC3339})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "Failed to load configuration")
	}

	token, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer).
		GenerateAccessToken(model.Identity{ID: *sub, Role: model.Role(*role)}, *ttl)
	if err != nil {
		log.Fatal(err, "Failed to issue token", "sub", *sub, "role", *role)
	}
	fmt.Println(token)
}
