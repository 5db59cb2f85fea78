package googleauth

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
)

// ClientOptions builds Google API client options from a base64-encoded
// service-account JSON blob (preferred, for containerized deployments) or a
// credentials file on disk. One of the two must be set.
func ClientOptions(credentialsB64, credentialsFile string) ([]option.ClientOption, error) {
	if credentialsB64 != "" {
		raw, err := base64.StdEncoding.DecodeString(credentialsB64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 credentials: %w", err)
		}
		return []option.ClientOption{option.WithCredentialsJSON(raw)}, nil
	}
	if credentialsFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}, nil
	}
	return nil, fmt.Errorf("no google credentials configured")
}
