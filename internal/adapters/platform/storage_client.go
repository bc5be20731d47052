package platform

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// StorageClient deletes artifact content via the platform storage service.
// HARD_DELETE goes through here; SOFT_DELETE never touches storage.
type StorageClient struct {
	baseURL      string
	serviceToken string
	client       *http.Client
}

func NewStorageClient(baseURL, serviceToken string) *StorageClient {
	return &StorageClient{
		baseURL:      baseURL,
		serviceToken: serviceToken,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *StorageClient) Delete(ctx context.Context, storageRef string) error {
	endpoint := c.baseURL + "/storage/v1/objects/" + url.PathEscape(storageRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build storage delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage delete: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		// Already gone; deletion is idempotent from our side.
		return nil
	default:
		return fmt.Errorf("storage delete: unexpected status %d", resp.StatusCode)
	}
}

// LoggingStorage is the storage stand-in for local runs; it records the
// delete instead of performing one.
type LoggingStorage struct {
	logger *slog.Logger
}

func NewLoggingStorage(logger *slog.Logger) *LoggingStorage {
	return &LoggingStorage{logger: logger}
}

func (s *LoggingStorage) Delete(ctx context.Context, storageRef string) error {
	s.logger.InfoContext(ctx, "storage delete (noop)",
		"module", "platform.storage",
		"layer", "adapter",
		"operation", "delete_object",
		"outcome", "success",
		"storage_ref", storageRef,
	)
	return nil
}
