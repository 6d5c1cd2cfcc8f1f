package outbound

import (
	"context"
	"io"
)

// ImageGenerationRequest is a single recoloring request sent to the provider.
type ImageGenerationRequest struct {
	Prompt string
	// ImageDataURI is the source drawing as a data URI.
	ImageDataURI string
}

// ImageGenerationResult is the provider's output.
type ImageGenerationResult struct {
	// ImageURL is an https URL or a data URI.
	ImageURL string
	Model    string
}

// ImageGeneratorPort defines the image generation provider.
type ImageGeneratorPort interface {
	// Generate performs exactly one provider call. It never retries.
	Generate(ctx context.Context, req *ImageGenerationRequest) (*ImageGenerationResult, error)
}

// ImageStoragePort defines object storage for drawings and generated images.
type ImageStoragePort interface {
	// Put uploads an object to storage.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// URL returns the public URL of an object.
	URL(key string) string
}
