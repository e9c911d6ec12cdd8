package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

// R2Config holds credentials for an S3-compatible bucket (Cloudflare
// R2 or plain S3 via a custom endpoint).
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

func (c R2Config) Validate() error {
	if c.AccountID == "" {
		return fmt.Errorf("account ID is required")
	}
	if c.AccessKeyID == "" {
		return fmt.Errorf("access key ID is required")
	}
	if c.SecretAccessKey == "" {
		return fmt.Errorf("secret access key is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("bucket name is required")
	}
	return nil
}

type R2Storage struct {
	Client *s3.Client
	Bucket string
}

func NewR2Storage(cfg R2Config) (*R2Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	endpointResolver := aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:           "https://" + cfg.AccountID + ".r2.cloudflarestorage.com",
			SigningRegion: "auto",
		}, nil
	})

	creds := aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		}, nil
	})

	opts := []func(*config.LoadOptions) error{
		config.WithRegion("auto"),
		config.WithEndpointResolver(endpointResolver),
		config.WithCredentialsProvider(creds),
	}

	awsCfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		logrus.Errorf("Failed to load R2 configuration: %v", err)
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg)
	logrus.Info("Successfully configured R2 storage")
	return &R2Storage{Client: client, Bucket: cfg.Bucket}, nil
}

// Upload stores an artifact in the bucket.
func (s *R2Storage) Upload(file io.Reader, filename string) (string, error) {
	logrus.WithFields(logrus.Fields{
		"filename": filename,
		"bucket":   s.Bucket,
	}).Info("Initiating artifact upload")

	_, err := s.Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(filename),
		Body:   file,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"filename": filename,
			"error":    err,
		}).Error("Error uploading artifact")
		return "", err
	}
	return filename, nil
}

// Download fetches an artifact into a temporary file.
func (s *R2Storage) Download(filename string) (*os.File, error) {
	tmpFile, err := os.CreateTemp("", "download-*")
	if err != nil {
		return nil, err
	}

	result, err := s.Client.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		tmpFile.Close()
		logrus.WithFields(logrus.Fields{
			"filename": filename,
			"error":    err,
		}).Error("Error downloading artifact")
		return nil, err
	}
	defer result.Body.Close()

	if _, err := io.Copy(tmpFile, result.Body); err != nil {
		tmpFile.Close()
		return nil, err
	}
	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		tmpFile.Close()
		return nil, err
	}
	return tmpFile, nil
}

// Delete removes an artifact from the bucket.
func (s *R2Storage) Delete(filename string) error {
	_, err := s.Client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"filename": filename,
			"error":    err,
		}).Error("Error deleting artifact")
	}
	return err
}

// Exists checks whether an artifact is present in the bucket.
func (s *R2Storage) Exists(filePath string) (bool, error) {
	_, err := s.Client.HeadObject(context.TODO(), &s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(filePath),
	})
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
