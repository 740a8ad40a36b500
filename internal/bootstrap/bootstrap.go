// Package bootstrap implements the deployment bootstrap: it validates the
// required deployment secrets, materializes them into a dotenv artifact
// together with the fixed application defaults, and launches the dashboard
// process with that configuration in its environment.
package bootstrap

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// RequiredSecrets are the deployment credentials that must be present and
// non-empty before any configuration artifact is written. Order matters: it
// is both the validation order and the artifact order.
var RequiredSecrets = []string{
	"ODDS_API_KEY",
	"SPORTSDATA_API_KEY",
	"FOOTBALL_DATA_KEY",
	"STREAMLIT_API_KEY",
}

// pair is one KEY=value line of the artifact
type pair struct {
	Key   string
	Value string
}

// fixedDefaults are written after the secrets, in this exact order
var fixedDefaults = []pair{
	{"DB_PATH", "data/betting.db"},
	{"PAPER_TRADING", "true"},
	{"DEFAULT_STAKE", "100"},
	{"UPDATE_INTERVAL", "60"},
	{"ENABLED_BOOKS", `["DraftKings","FanDuel","BetMGM","Caesars","PointsBet"]`},
}

// MissingSecretError reports the first absent or empty required secret.
type MissingSecretError struct {
	Key string
}

func (e *MissingSecretError) Error() string {
	return fmt.Sprintf("missing required secret: %s", e.Key)
}

// ValidateSecrets checks every required secret through lookup and returns
// the validated values. Validation is all-or-nothing: the first missing or
// empty secret aborts with a MissingSecretError naming the key.
func ValidateSecrets(lookup func(string) string) (map[string]string, error) {
	secrets := make(map[string]string, len(RequiredSecrets))

	for _, key := range RequiredSecrets {
		value := lookup(key)
		if value == "" {
			return nil, &MissingSecretError{Key: key}
		}
		secrets[key] = value
	}

	return secrets, nil
}

// RenderEnv renders the dotenv artifact: the four validated secrets in
// declaration order followed by the fixed defaults, one KEY=value per line.
// Output is deterministic, so identical secrets produce identical bytes.
func RenderEnv(secrets map[string]string) string {
	var sb strings.Builder

	for _, key := range RequiredSecrets {
		sb.WriteString(key)
		sb.WriteString("=")
		sb.WriteString(secrets[key])
		sb.WriteString("\n")
	}

	for _, def := range fixedDefaults {
		sb.WriteString(def.Key)
		sb.WriteString("=")
		sb.WriteString(def.Value)
		sb.WriteString("\n")
	}

	return sb.String()
}

// WriteEnvFile validates secrets through lookup and writes the artifact to
// path. Nothing is written when validation fails.
func WriteEnvFile(path string, lookup func(string) string) error {
	secrets, err := ValidateSecrets(lookup)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(RenderEnv(secrets)), 0o600); err != nil {
		return fmt.Errorf("failed to write env file %s: %w", path, err)
	}

	return nil
}

// Launch starts the dashboard process with the artifact's key/value pairs
// appended to the current environment. The command's stdout and stderr are
// passed through; a launch failure propagates unmodified.
func Launch(command string, args []string, secrets map[string]string) error {
	cmd := exec.Command(command, args...)

	env := os.Environ()
	for _, key := range RequiredSecrets {
		env = append(env, key+"="+secrets[key])
	}
	for _, def := range fixedDefaults {
		env = append(env, def.Key+"="+def.Value)
	}
	cmd.Env = env

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("dashboard process failed: %w", err)
	}

	return nil
}
