// Package archive persists evaluation outcomes to Azure Blob Storage
// so runs can be compared across time and CI machines.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/spboyer/safegrade/internal/models"
)

// DefaultContainer is where outcomes land unless overridden.
const DefaultContainer = "safegrade-outcomes"

// blobClient is the slice of [*azblob.Client] the uploader needs.
type blobClient interface {
	UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// Uploader writes outcome JSON documents into one container.
type Uploader struct {
	client    blobClient
	container string
}

// NewUploader wraps an existing blob client.
func NewUploader(client *azblob.Client, container string) *Uploader {
	return newUploader(client, container)
}

func newUploader(client blobClient, container string) *Uploader {
	if container == "" {
		container = DefaultContainer
	}
	return &Uploader{client: client, container: container}
}

// NewUploaderFromEnv builds an uploader from AZURE_STORAGE_CONNECTION_STRING,
// or from AZURE_STORAGE_ACCOUNT_URL plus the default credential chain.
func NewUploaderFromEnv(container string) (*Uploader, error) {
	if connStr := os.Getenv("AZURE_STORAGE_CONNECTION_STRING"); connStr != "" {
		client, err := azblob.NewClientFromConnectionString(connStr, nil)
		if err != nil {
			return nil, fmt.Errorf("creating blob client: %w", err)
		}
		return newUploader(client, container), nil
	}

	accountURL := os.Getenv("AZURE_STORAGE_ACCOUNT_URL")
	if accountURL == "" {
		return nil, fmt.Errorf("neither AZURE_STORAGE_CONNECTION_STRING nor AZURE_STORAGE_ACCOUNT_URL is set")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("default credential: %w", err)
	}

	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}

	return newUploader(client, container), nil
}

// UploadOutcome stores one outcome as JSON and returns the blob name.
func (u *Uploader) UploadOutcome(ctx context.Context, outcome *models.EvaluationOutcome) (string, error) {
	if outcome == nil {
		return "", fmt.Errorf("nil outcome")
	}

	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling outcome: %w", err)
	}

	name := BlobName(outcome)

	if _, err := u.client.UploadBuffer(ctx, u.container, name, data, nil); err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}

	return name, nil
}

// BlobName derives a stable blob path from the outcome's model and
// timestamp.
func BlobName(outcome *models.EvaluationOutcome) string {
	model := sanitizeSegment(outcome.ModelID)
	if model == "" {
		model = "unknown-model"
	}

	return fmt.Sprintf("outcomes/%s/%s.json", model, outcome.Timestamp.UTC().Format("20060102-150405"))
}

// sanitizeSegment keeps blob paths flat: deployment names like
// "ft:gpt-4o-mini:nhtsa" carry separators we don't want in segments.
func sanitizeSegment(s string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	return strings.Trim(replacer.Replace(strings.ToLower(s)), "-")
}
