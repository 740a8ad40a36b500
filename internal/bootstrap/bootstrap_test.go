package bootstrap_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BTheCoderr/theRounders/internal/bootstrap"
)

func allSecrets() map[string]string {
	return map[string]string{
		"ODDS_API_KEY":       "a",
		"SPORTSDATA_API_KEY": "b",
		"FOOTBALL_DATA_KEY":  "c",
		"STREAMLIT_API_KEY":  "d",
	}
}

func lookupFrom(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestValidateSecrets_AllPresent(t *testing.T) {
	secrets, err := bootstrap.ValidateSecrets(lookupFrom(allSecrets()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(secrets) != 4 {
		t.Errorf("Expected 4 secrets, got %d", len(secrets))
	}

	if secrets["ODDS_API_KEY"] != "a" {
		t.Errorf("Expected secret passed through verbatim, got '%s'", secrets["ODDS_API_KEY"])
	}
}

func TestValidateSecrets_EachMissingKeyIsNamed(t *testing.T) {
	for _, missing := range bootstrap.RequiredSecrets {
		t.Run(missing, func(t *testing.T) {
			env := allSecrets()
			delete(env, missing)

			_, err := bootstrap.ValidateSecrets(lookupFrom(env))
			if err == nil {
				t.Fatal("expected error but got none")
			}

			var missingErr *bootstrap.MissingSecretError
			if !errors.As(err, &missingErr) {
				t.Fatalf("expected MissingSecretError, got %T", err)
			}

			if missingErr.Key != missing {
				t.Errorf("Expected error to name '%s', got '%s'", missing, missingErr.Key)
			}
		})
	}
}

func TestValidateSecrets_EmptyValueIsMissing(t *testing.T) {
	env := allSecrets()
	env["SPORTSDATA_API_KEY"] = ""

	_, err := bootstrap.ValidateSecrets(lookupFrom(env))
	if err == nil {
		t.Fatal("expected error for empty secret but got none")
	}

	var missingErr *bootstrap.MissingSecretError
	if !errors.As(err, &missingErr) || missingErr.Key != "SPORTSDATA_API_KEY" {
		t.Errorf("Expected MissingSecretError naming SPORTSDATA_API_KEY, got %v", err)
	}
}

func TestRenderEnv_ExactKeysAndOrder(t *testing.T) {
	rendered := bootstrap.RenderEnv(allSecrets())

	want := []string{
		"ODDS_API_KEY=a",
		"SPORTSDATA_API_KEY=b",
		"FOOTBALL_DATA_KEY=c",
		"STREAMLIT_API_KEY=d",
		"DB_PATH=data/betting.db",
		"PAPER_TRADING=true",
		"DEFAULT_STAKE=100",
		"UPDATE_INTERVAL=60",
		`ENABLED_BOOKS=["DraftKings","FanDuel","BetMGM","Caesars","PointsBet"]`,
	}

	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	if len(lines) != len(want) {
		t.Fatalf("Expected exactly %d lines, got %d:\n%s", len(want), len(lines), rendered)
	}

	for i, wantLine := range want {
		if lines[i] != wantLine {
			t.Errorf("Line %d: expected '%s', got '%s'", i, wantLine, lines[i])
		}
	}
}

func TestRenderEnv_Idempotent(t *testing.T) {
	first := bootstrap.RenderEnv(allSecrets())
	second := bootstrap.RenderEnv(allSecrets())

	if first != second {
		t.Error("Expected byte-identical artifact across renders with identical secrets")
	}
}

func TestWriteEnvFile_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	if err := bootstrap.WriteEnvFile(path, lookupFrom(allSecrets())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}

	if string(data) != bootstrap.RenderEnv(allSecrets()) {
		t.Error("Artifact on disk differs from rendered artifact")
	}
}

func TestWriteEnvFile_MissingSecretWritesNothing(t *testing.T) {
	// FOOTBALL_DATA_KEY missing alone: validation must fail on that key
	// and no artifact may be produced
	env := allSecrets()
	delete(env, "FOOTBALL_DATA_KEY")

	path := filepath.Join(t.TempDir(), ".env")
	err := bootstrap.WriteEnvFile(path, lookupFrom(env))
	if err == nil {
		t.Fatal("expected error but got none")
	}

	var missingErr *bootstrap.MissingSecretError
	if !errors.As(err, &missingErr) || missingErr.Key != "FOOTBALL_DATA_KEY" {
		t.Errorf("Expected MissingSecretError naming FOOTBALL_DATA_KEY, got %v", err)
	}

	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("Expected no artifact to be written when validation fails")
	}
}

func TestWriteEnvFile_RerunByteIdentical(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")

	if err := bootstrap.WriteEnvFile(path, lookupFrom(allSecrets())); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := os.ReadFile(path)

	if err := bootstrap.WriteEnvFile(path, lookupFrom(allSecrets())); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, _ := os.ReadFile(path)

	if string(first) != string(second) {
		t.Error("Expected byte-identical artifact across re-runs with identical secrets")
	}
}
