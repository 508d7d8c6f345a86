// Package secrets fetches credentials from Secret Manager, falling back to
// environment variables so local runs need no cloud access.
package secrets

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Get returns the latest version of secretID in projectID. If Secret Manager
// is unreachable or the secret is missing, the environment variable named by
// the upper-snake form of the id (diffbot-token becomes DIFFBOT_TOKEN) is
// tried before giving up with an empty string.
func Get(ctx context.Context, projectID, secretID string) string {
	value, err := fromSecretManager(ctx, projectID, secretID)
	if err == nil && value != "" {
		fmt.Printf("✅ Retrieved %q from Secret Manager\n", secretID)
		return value
	}

	envKey := strings.ToUpper(strings.ReplaceAll(secretID, "-", "_"))
	if envValue := os.Getenv(envKey); envValue != "" {
		fmt.Printf("✅ Using %q from environment variable\n", secretID)
		return envValue
	}

	log.Printf("could not retrieve %q: %v", secretID, err)
	return ""
}

func fromSecretManager(ctx context.Context, projectID, secretID string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secretID),
	})
	if err != nil {
		return "", fmt.Errorf("accessing secret %s: %w", secretID, err)
	}
	return string(resp.Payload.Data), nil
}
