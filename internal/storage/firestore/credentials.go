package firestore

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
)

// credentialOptions resolves service-account credentials from the environment.
// HABITUAL_FIRESTORE_CREDENTIALS holds base64 service-account JSON and wins over
// HABITUAL_FIRESTORE_CREDENTIALS_FILE. With neither set the client falls back to
// application default credentials, or to the emulator when FIRESTORE_EMULATOR_HOST is set.
func credentialOptions() ([]option.ClientOption, error) {
	if encoded := strings.TrimSpace(os.Getenv(constants.EnvFirestoreCredentials)); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 credentials from %s: %w", constants.EnvFirestoreCredentials, err)
		}
		logger.Debug("Firestore credentials loaded from environment", "var", constants.EnvFirestoreCredentials)
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}, nil
	}

	if path := strings.TrimSpace(os.Getenv(constants.EnvFirestoreCredsFile)); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("firestore credentials file %s: %w", path, err)
		}
		logger.Debug("Firestore credentials loaded from file", "path", path)
		return []option.ClientOption{option.WithCredentialsFile(path)}, nil
	}

	logger.Debug("Firestore using application default credentials")
	return nil, nil
}
