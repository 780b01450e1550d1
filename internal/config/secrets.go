package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// readSecret reads a secret from a file under the secrets directory
// (Docker Secrets layout). When the file is absent, the value falls back
// to the environment variable of the same name upper-cased.
func readSecret(secretsDir, secretName string) (string, error) {
	filePath := filepath.Join(secretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err == nil {
		secret := strings.TrimSpace(string(secretBytes))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", filePath)
		}
		return secret, nil
	}

	if envVal := strings.TrimSpace(os.Getenv(strings.ToUpper(secretName))); envVal != "" {
		return envVal, nil
	}
	return "", fmt.Errorf("failed to read secret %s from file or environment: %w", secretName, err)
}
