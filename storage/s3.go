package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Top-level folders in the bucket. Only punch photos are ever swept.
const (
	PunchFolder    = "punches"
	PortraitFolder = "employees"
)

// ImageStore keeps uploaded punch and profile photos.
type ImageStore interface {
	Upload(ctx context.Context, folder string, file *multipart.FileHeader) (string, error)
	DeleteOlderThan(ctx context.Context, folder string, cutoff time.Time) (int, []string, error)
}

var (
	ErrNotConfigured = errors.New("image storage is not configured")
	ErrNoFolder      = errors.New("image sweep needs a folder")
)

type S3Store struct {
	client   *minio.Client
	bucket   string
	host     string
	maxBytes int64
}

// NewS3Store connects to any S3-compatible endpoint. Public URLs are served
// from https://host/<key>.
func NewS3Store(endpoint, accessKey, secretKey, bucket, host string, useSSL bool, maxBytes int64) (*S3Store, error) {
	if endpoint == "" || bucket == "" || host == "" {
		return nil, ErrNotConfigured
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	return &S3Store{client: client, bucket: bucket, host: host, maxBytes: maxBytes}, nil
}

func (s *S3Store) Upload(ctx context.Context, folder string, file *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	limit := s.maxBytes
	if limit <= 0 {
		limit = 20 << 20
	}
	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > limit {
		return "", ErrTooLarge
	}

	prepared, err := PrepareImage(data)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s/%s%s", folder, time.Now().UTC().Format("2006/01"), uuid.NewString(), prepared.Ext)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(prepared.Data), int64(len(prepared.Data)), minio.PutObjectOptions{
		ContentType:  prepared.ContentType,
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	return fmt.Sprintf("https://%s/%s", s.host, key), nil
}

// folderPrefix turns a folder name into a listing prefix. An empty folder
// would match the whole bucket and is refused.
func folderPrefix(folder string) (string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return "", ErrNoFolder
	}
	return folder + "/", nil
}

// DeleteOlderThan removes the objects under folder last modified before
// cutoff. Per-object failures are collected and do not stop the sweep.
func (s *S3Store) DeleteOlderThan(ctx context.Context, folder string, cutoff time.Time) (int, []string, error) {
	prefix, err := folderPrefix(folder)
	if err != nil {
		return 0, nil, err
	}
	deleted := 0
	failures := []string{}

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return deleted, failures, fmt.Errorf("list objects: %w", obj.Err)
		}
		if !obj.LastModified.Before(cutoff) {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			log.Printf("Failed to remove object %s: %v", obj.Key, err)
			failures = append(failures, fmt.Sprintf("%s: %v", obj.Key, err))
			continue
		}
		deleted++
	}
	return deleted, failures, nil
}
