package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"

	"cloudlead/internal/config"
	"cloudlead/internal/models"
)

type uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Archive writes a JSON snapshot of each completed project's leads.
type Archive struct {
	uploader uploader
	now      func() time.Time
}

// Snapshot is the archived document.
type Snapshot struct {
	Project    models.Project `json:"project"`
	Leads      []models.Lead  `json:"leads"`
	ArchivedAt time.Time      `json:"archived_at"`
}

// New picks S3 when a bucket is configured, otherwise the local directory.
// It returns nil when neither is configured.
func New(ctx context.Context, cfg config.Config) (*Archive, error) {
	var up uploader
	switch {
	case cfg.ArchiveS3Bucket != "":
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		up = &s3Uploader{client: client, bucket: cfg.ArchiveS3Bucket}
	case cfg.ArchiveDir != "":
		up = &localUploader{baseDir: cfg.ArchiveDir}
	default:
		return nil, nil
	}
	return &Archive{uploader: up, now: time.Now}, nil
}

func newS3Client(ctx context.Context, cfg config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.ArchiveS3Region),
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "load aws config")
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ArchiveS3PathStyle
		if cfg.ArchiveS3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.ArchiveS3Endpoint)
		}
	}), nil
}

// Store uploads the snapshot and returns its location.
func (a *Archive) Store(ctx context.Context, project models.Project, leads []models.Lead) (string, error) {
	snap := Snapshot{Project: project, Leads: leads, ArchivedAt: a.now().UTC()}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "marshal snapshot")
	}
	loc, err := a.uploader.Upload(ctx, snapshotKey(project.ID, snap.ArchivedAt), body, "application/json")
	if err != nil {
		return "", eris.Wrap(err, "upload snapshot")
	}
	return loc, nil
}

func snapshotKey(projectID string, at time.Time) string {
	id := sanitizeKey(projectID)
	if id == "" || id == "." {
		id = "unknown"
	}
	return fmt.Sprintf("projects/%s/leads-%s.json", id, at.Format("20060102T150405Z"))
}

func sanitizeKey(key string) string {
	key = strings.ReplaceAll(key, "/", "_")
	key = strings.ReplaceAll(key, "..", "_")
	return strings.TrimSpace(key)
}

type localUploader struct {
	baseDir string
}

func (l *localUploader) Upload(_ context.Context, key string, body []byte, _ string) (string, error) {
	path := filepath.Join(l.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", eris.Wrap(err, "create dirs")
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", eris.Wrap(err, "write file")
	}
	return path, nil
}

type s3Uploader struct {
	client *s3.Client
	bucket string
}

func (s *s3Uploader) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", eris.Wrap(err, "put object")
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
