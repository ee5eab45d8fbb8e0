package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/fleetgate/fleet-tracking-system/config"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/internal/service/auth"
	"github.com/google/uuid"
)

// tokengen signs development bearer tokens for manual testing against a
// locally running tracking engine.
var (
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
	class      = flag.String("class", "driver", "Token class: driver, operator or client")
	companyID  = flag.String("company-id", "", "Company id, random when empty")
	subjectID  = flag.String("subject-id", "", "Driver/client id, random when empty")
	ttl        = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
)

func main() {
	flag.Parse()

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	principal := &models.Principal{
		UserID:    uuid.New(),
		CompanyID: parseOrNew(*companyID),
	}

	subject := parseOrNew(*subjectID)

	switch *class {
	case "driver":
		principal.Class = types.ConnDriver
		principal.DriverID = subject
	case "operator":
		principal.Class = types.ConnOperator
	case "client":
		principal.Class = types.ConnClient
		principal.ClientID = subject
	default:
		log.Fatalf("unknown class %q", *class)
	}

	token, err := auth.NewVerifier(cfg.Auth.JWTSecret).Sign(principal, *ttl)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	fmt.Printf("class:      %s\n", principal.Class)
	fmt.Printf("company_id: %s\n", principal.CompanyID)
	fmt.Printf("subject:    %s\n", subject)
	fmt.Printf("token:      %s\n", token)
}

func parseOrNew(raw string) uuid.UUID {
	if raw == "" {
		return uuid.New()
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Fatalf("invalid uuid %q: %v", raw, err)
	}
	return id
}
