// Package filestore реализует шлюз к S3-совместимому хранилищу
// документов. Шлюз работает с двумя логическими корзинами: документы
// заявителей и файлы, приложенные администратором, и умеет выдавать
// подписанные ссылки с ограниченным сроком жизни.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/devrathore/csc-portal/internal/config"
)

// ErrObjectExists возвращается при попытке записать объект по уже
// занятому пути: перезапись отключена, уникальность пути обеспечивает
// вызывающая сторона временной меткой в имени.
var ErrObjectExists = errors.New("object already exists")

// Store инкапсулирует клиент объектного хранилища и имена корзин.
type Store struct {
	client      *minio.Client
	userBucket  string
	adminBucket string
	expiry      time.Duration
}

// New создаёт клиент хранилища документов по настройкам портала.
func New(cfg config.FileStore) (*Store, error) {
	const op = "filestore.New"

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{
		client:      client,
		userBucket:  cfg.UserBucket,
		adminBucket: cfg.AdminBucket,
		expiry:      cfg.SignedURLExpiry,
	}, nil
}

// UserBucket возвращает имя корзины документов заявителей.
func (s *Store) UserBucket() string { return s.userBucket }

// AdminBucket возвращает имя корзины файлов администратора.
func (s *Store) AdminBucket() string { return s.adminBucket }

// EnsureBuckets создаёт обе корзины, если их ещё нет.
func (s *Store) EnsureBuckets(ctx context.Context) error {
	const op = "filestore.EnsureBuckets"
	for _, bucket := range []string{s.userBucket, s.adminBucket} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if exists {
			continue
		}
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// Upload записывает объект в корзину. Существующий путь не
// перезаписывается: вызов завершается ErrObjectExists.
func (s *Store) Upload(ctx context.Context, bucket, path, contentType string, size int64, r io.Reader) error {
	const op = "filestore.Upload"

	_, err := s.client.StatObject(ctx, bucket, path, minio.StatObjectOptions{})
	if err == nil {
		return fmt.Errorf("%s: %w", op, ErrObjectExists)
	}
	if resp := minio.ToErrorResponse(err); resp.Code != "NoSuchKey" {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.client.PutObject(ctx, bucket, path, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SignedURL выдаёт временную ссылку на чтение объекта. Ссылка нигде не
// сохраняется, повторный вызов просто выдаёт новую.
func (s *Store) SignedURL(ctx context.Context, bucket, path string) (string, error) {
	const op = "filestore.SignedURL"

	u, err := s.client.PresignedGetObject(ctx, bucket, path, s.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return u.String(), nil
}

var unsafeNameChars = regexp.MustCompile(`[/\\\s]+`)

// SanitizeName приводит исходное имя файла к безопасному для пути
// хранилища виду: разделители путей и пробелы заменяются на "_".
func SanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}
