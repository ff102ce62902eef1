package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"github.com/collectorsden/shelftrack/internal/config"
	"github.com/collectorsden/shelftrack/internal/database"
	"github.com/collectorsden/shelftrack/internal/database/models"
	"github.com/collectorsden/shelftrack/internal/database/repositories"
)

const (
	photoCacheSize = 1024
	maxPhotoSize   = 10 << 20
)

var (
	ErrPhotoNotFound        = errors.New("photo not found")
	ErrPhotoTooLarge        = errors.New("photo exceeds the 10 MB limit")
	ErrPhotoUnsupportedType = errors.New("unsupported photo type")
)

var photoExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// PhotoService stores item photos in a Spaces-style S3 bucket. Object
// existence checks are cached so repeated detail views skip HEAD
// round-trips.
type PhotoService struct {
	db     *database.DB
	client *s3.Client
	bucket string
	region string
	root   string
	exists *lru.Cache
}

func NewPhotoService(db *database.DB, cfg config.SpacesConfig) (*PhotoService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load object storage config: %w", err)
	}

	cache, _ := lru.New(photoCacheSize)
	return &PhotoService{
		db:     db,
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		region: cfg.Region,
		root:   strings.Trim(cfg.PhotoRoot, "/"),
		exists: cache,
	}, nil
}

// Upload stores the photo bytes under items/<itemID>/<uuid><ext> and
// records the row. The extension must be a known image type and the
// payload at most 10 MB.
func (s *PhotoService) Upload(ctx context.Context, itemID int64, filename, contentType string, data []byte) (*models.ItemPhoto, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	known, ok := photoExtensions[ext]
	if !ok {
		return nil, ErrPhotoUnsupportedType
	}
	if len(data) > maxPhotoSize {
		return nil, ErrPhotoTooLarge
	}
	if contentType == "" {
		contentType = known
	}

	item, err := repositories.NewItemRepository(s.db.BunDB()).GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	key := s.objectKey(itemID, ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000"),
		ACL:          types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}

	photo := &models.ItemPhoto{
		ItemID:      itemID,
		ObjectKey:   key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}
	if err := repositories.NewPhotoRepository(s.db.BunDB()).Create(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to record photo: %w", err)
	}
	s.exists.Add(key, true)

	slog.Info("Photo uploaded",
		slog.String("type", "db"),
		slog.Int64("item_id", itemID),
		slog.String("key", key),
	)
	return photo, nil
}

// Delete removes the object and then the row. A failed object delete
// keeps the row so the photo stays visible instead of dangling.
func (s *PhotoService) Delete(ctx context.Context, photoID int64) error {
	photos := repositories.NewPhotoRepository(s.db.BunDB())
	photo, err := photos.GetByID(ctx, photoID)
	if err != nil {
		return fmt.Errorf("failed to load photo: %w", err)
	}
	if photo == nil {
		return ErrPhotoNotFound
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(photo.ObjectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo object %s: %w", photo.ObjectKey, err)
	}

	if err := photos.Delete(ctx, photoID); err != nil {
		return fmt.Errorf("failed to delete photo row: %w", err)
	}
	s.exists.Remove(photo.ObjectKey)
	return nil
}

// URL renders the public CDN address of a stored photo.
func (s *PhotoService) URL(photo *models.ItemPhoto) string {
	return fmt.Sprintf("https://%s.%s.cdn.digitaloceanspaces.com/%s", s.bucket, s.region, photo.ObjectKey)
}

// Exists reports whether the object is present in the bucket, caching
// positive answers.
func (s *PhotoService) Exists(ctx context.Context, key string) bool {
	if _, ok := s.exists.Get(key); ok {
		return true
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false
	}
	s.exists.Add(key, true)
	return true
}

func (s *PhotoService) objectKey(itemID int64, ext string) string {
	key := fmt.Sprintf("items/%d/%s%s", itemID, uuid.New().String(), ext)
	if s.root != "" {
		key = s.root + "/" + key
	}
	return key
}
