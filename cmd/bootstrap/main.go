package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BTheCoderr/theRounders/internal/bootstrap"
)

func main() {
	fmt.Println("=== theRounders Deployment Bootstrap ===")

	// Validate required secrets before anything is written
	secrets, err := bootstrap.ValidateSecrets(os.Getenv)
	if err != nil {
		var missing *bootstrap.MissingSecretError
		if errors.As(err, &missing) {
			fmt.Printf("❌ %v\n", err)
		} else {
			fmt.Printf("❌ Secret validation failed: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Printf("✓ Validated %d required secrets\n", len(bootstrap.RequiredSecrets))

	// Materialize the dotenv artifact
	envFile := getEnv("BOOTSTRAP_ENV_FILE", ".env")
	if err := bootstrap.WriteEnvFile(envFile, os.Getenv); err != nil {
		fmt.Printf("❌ Failed to write %s: %v\n", envFile, err)
		os.Exit(1)
	}
	fmt.Printf("✓ Wrote configuration artifact: %s\n", envFile)

	// Launch the dashboard process with the configuration in its environment
	command := getEnv("DASHBOARD_CMD", "rounders")
	var args []string
	if extra := os.Getenv("DASHBOARD_ARGS"); extra != "" {
		args = strings.Fields(extra)
	}

	fmt.Printf("✓ Launching dashboard: %s\n", command)
	if err := bootstrap.Launch(command, args, secrets); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
