// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agrilink/agrilink-backend/internal/config"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

// StorageService stores uploaded files: product images and business
// permit documents. S3 in production, local disk for development.
type StorageService struct {
	cfg      *config.Config
	s3Client *s3.S3
	uploader *s3manager.Uploader
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	svc := &StorageService{cfg: cfg}

	if cfg.Upload.UseS3 {
		awsConfig := &aws.Config{
			Region: aws.String(cfg.AWS.Region),
		}
		if cfg.AWS.AccessKeyID != "" {
			awsConfig.Credentials = credentials.NewStaticCredentials(
				cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, "")
		}
		if cfg.AWS.S3Endpoint != "" {
			awsConfig.Endpoint = aws.String(cfg.AWS.S3Endpoint)
			awsConfig.S3ForcePathStyle = aws.Bool(true)
		}

		sess, err := session.NewSession(awsConfig)
		if err != nil {
			return nil, fmt.Errorf("create aws session: %w", err)
		}
		svc.s3Client = s3.New(sess)
		svc.uploader = s3manager.NewUploader(sess)
	} else {
		if err := os.MkdirAll(cfg.Upload.LocalPath, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}

	return svc, nil
}

// UploadProductImage stores a product photo and returns its URL or key.
func (s *StorageService) UploadProductImage(file *multipart.FileHeader) (string, error) {
	return s.upload(file, "products")
}

// UploadBusinessPermit stores a farmer's permit document under a
// private prefix; it is only served back through the admin download.
func (s *StorageService) UploadBusinessPermit(file *multipart.FileHeader) (string, error) {
	return s.upload(file, "permits")
}

func (s *StorageService) upload(file *multipart.FileHeader, prefix string) (string, error) {
	if file.Size > s.cfg.Upload.MaxFileSize {
		return "", fmt.Errorf("file exceeds %d bytes", s.cfg.Upload.MaxFileSize)
	}

	contentType := file.Header.Get("Content-Type")
	if !s.allowedType(contentType) {
		return "", fmt.Errorf("content type %s not allowed", contentType)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	suffix, err := utils.GenerateRandomString(8)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%d-%s-%s%s",
		prefix, time.Now().Unix(), uuid.New().String()[:8], suffix,
		strings.ToLower(filepath.Ext(file.Filename)))

	if s.cfg.Upload.UseS3 {
		data, err := io.ReadAll(src)
		if err != nil {
			return "", err
		}

		_, err = s.uploader.Upload(&s3manager.UploadInput{
			Bucket:      aws.String(s.cfg.AWS.S3Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return "", fmt.Errorf("s3 upload: %w", err)
		}

		logrus.WithField("key", key).Debug("Uploaded file to S3")
		return key, nil
	}

	dst := filepath.Join(s.cfg.Upload.LocalPath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", err
	}
	return key, nil
}

// Download streams a stored object. Used by the admin permit review.
func (s *StorageService) Download(key string) (io.ReadCloser, error) {
	if s.cfg.Upload.UseS3 {
		out, err := s.s3Client.GetObject(&s3.GetObjectInput{
			Bucket: aws.String(s.cfg.AWS.S3Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("s3 get: %w", err)
		}
		return out.Body, nil
	}

	return os.Open(filepath.Join(s.cfg.Upload.LocalPath, filepath.FromSlash(key)))
}

func (s *StorageService) Delete(key string) error {
	if s.cfg.Upload.UseS3 {
		_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.AWS.S3Bucket),
			Key:    aws.String(key),
		})
		return err
	}
	return os.Remove(filepath.Join(s.cfg.Upload.LocalPath, filepath.FromSlash(key)))
}

func (s *StorageService) allowedType(contentType string) bool {
	for _, t := range s.cfg.Upload.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
