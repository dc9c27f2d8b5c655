package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// ErrNoBucket - трек лежит в S3, а бакет не настроен
var ErrNoBucket = errors.New("бакет S3 не настроен")

// S3Config содержит настройки для S3
type S3Config struct {
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	BucketName string
}

// s3API - часть клиента S3, которой пользуется Bucket
type s3API interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
	ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error
}

// uploaderAPI - загрузчик s3manager
type uploaderAPI interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// Object - объект бакета
type Object struct {
	Key  string
	Size int64
}

// Bucket - бакет S3 с треками
type Bucket struct {
	client   s3API
	uploader uploaderAPI
	config   *S3Config
}

// NewBucket создает клиент бакета
func NewBucket(config *S3Config) (*Bucket, error) {
	if config.BucketName == "" {
		return nil, ErrNoBucket
	}
	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
	}

	// Совместимые хранилища адресуются по endpoint с path-style
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AWS сессии: %w", err)
	}

	return &Bucket{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		config:   config,
	}, nil
}

// Name возвращает имя бакета
func (b *Bucket) Name() string { return b.config.BucketName }

// Open открывает объект на чтение
func (b *Bucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения объекта %s: %w", key, err)
	}
	return out.Body, nil
}

// List возвращает объекты с заданным префиксом
func (b *Bucket) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object
	err := b.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.config.BucketName),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:  aws.StringValue(obj.Key),
				Size: aws.Int64Value(obj.Size),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка объектов: %w", err)
	}
	return objects, nil
}

// Upload загружает трек в бакет и возвращает его адрес s3://
func (b *Bucket) Upload(ctx context.Context, reader io.Reader, key string) (string, error) {
	_, err := b.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(b.config.BucketName),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки: %w", err)
	}
	return S3Location(b.config.BucketName, key), nil
}

// S3Location формирует адрес объекта
func S3Location(bucket, key string) string {
	return "s3://" + bucket + "/" + strings.TrimPrefix(key, "/")
}

// ParseS3Location разбирает адрес s3://bucket/key
func ParseS3Location(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("некорректный адрес S3: %q", location)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}
