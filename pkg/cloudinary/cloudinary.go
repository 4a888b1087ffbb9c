// Package cloudinary stores attachment blobs in a Cloudinary media library.
package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// assetAPI is the part of the Cloudinary upload API the store relies on.
type assetAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Service stores attachments in Cloudinary. References have the form
// "<resource_type>:<public_id>" so they can be destroyed later.
type Service struct {
	api    assetAPI
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return newService(&cld.Upload, cfg.Folder, logger), nil
}

func newService(api assetAPI, folder string, logger zerolog.Logger) *Service {
	return &Service{
		api:    api,
		folder: strings.Trim(folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}
}

// Save uploads the reader into <root folder>/<folder> and returns its reference.
func (s *Service) Save(ctx context.Context, folder, filename string, reader io.Reader) (string, error) {
	target := strings.Trim(strings.Join([]string{s.folder, strings.Trim(folder, "/")}, "/"), "/")

	params := uploader.UploadParams{
		Folder:       target,
		PublicID:     buildPublicID(filename),
		ResourceType: "auto",
	}

	result, err := s.api.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload asset: %s", result.Error.Message)
	}

	resourceType := result.ResourceType
	if resourceType == "" {
		resourceType = "image"
	}
	s.logger.Info().Str("public_id", result.PublicID).Str("resource_type", resourceType).Msg("file uploaded to cloudinary")

	return resourceType + ":" + result.PublicID, nil
}

// Delete destroys the referenced asset.
func (s *Service) Delete(ctx context.Context, ref string) error {
	resourceType, publicID, ok := strings.Cut(ref, ":")
	if !ok || publicID == "" {
		return fmt.Errorf("invalid cloudinary reference %q", ref)
	}

	result, err := s.api.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to destroy asset: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to destroy asset: %s", result.Error.Message)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("failed to destroy asset: %s", result.Result)
	}
	return nil
}

func buildPublicID(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "attachment"
	}
	return base + "-" + uuid.NewString()[:8]
}
