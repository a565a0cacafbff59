// Package keystore loads the vault encryption key at startup from the
// configured source. Errors never include key material.
package keystore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/server/config"
)

// maxKeyObjectSize bounds how much of a key file or object is read.
const maxKeyObjectSize = 4096

type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3Client = func(cfg aws.Config, optFns ...func(*s3.Options)) objectGetter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Load returns the 32-byte key named by cfg.EncryptionKeySource:
//
//	env (or empty)        cfg.EncryptionKey, base64
//	file:<path>           a file holding the base64 key
//	s3://<bucket>/<key>   an S3 object holding the base64 key
func Load(ctx context.Context, cfg *config.Config) ([]byte, error) {
	source := cfg.EncryptionKeySource

	switch {
	case source == "" || source == config.KeySourceEnv:
		if cfg.EncryptionKey == "" {
			return nil, errors.New("encryption key is not set")
		}
		return parse("env", cfg.EncryptionKey)

	case strings.HasPrefix(source, config.KeySourceFilePrefix):
		return loadFile(strings.TrimPrefix(source, config.KeySourceFilePrefix))

	case strings.HasPrefix(source, config.KeySourceS3Prefix):
		return loadS3(ctx, cfg, strings.TrimPrefix(source, config.KeySourceS3Prefix))

	default:
		return nil, fmt.Errorf("unknown encryption key source %q", source)
	}
}

func parse(origin, encoded string) ([]byte, error) {
	key, err := cryptox.ParseKey(encoded)
	if err != nil {
		return nil, fmt.Errorf("encryption key from %s: %w", origin, err)
	}
	return key, nil
}

func loadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("encryption key file path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open encryption key file: %w", err)
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, maxKeyObjectSize))
	if err != nil {
		return nil, fmt.Errorf("read encryption key file: %w", err)
	}

	return parse("file", string(b))
}

func loadS3(ctx context.Context, cfg *config.Config, location string) ([]byte, error) {
	bucket, objectKey, ok := strings.Cut(location, "/")
	if !ok || bucket == "" || objectKey == "" {
		return nil, fmt.Errorf("invalid s3 key location %q, want s3://<bucket>/<key>", config.KeySourceS3Prefix+location)
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3RootPassword != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3RootUser, cfg.S3RootPassword, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3Client(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("get encryption key object: %w", err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(io.LimitReader(out.Body, maxKeyObjectSize))
	if err != nil {
		return nil, fmt.Errorf("read encryption key object: %w", err)
	}

	return parse("s3", string(b))
}
