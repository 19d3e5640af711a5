// internal/services/export_service.go
package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ranksight/ranksight-backend/internal/config"
	"github.com/ranksight/ranksight-backend/internal/models"
)

// ExportService renders audit results to CSV and uploads them to S3. Without
// AWS credentials (local development) the CSV is still produced, just not
// uploaded.
type ExportService struct {
	db       *gorm.DB
	s3Client *s3.S3
	config   *config.Config
}

type ExportResult struct {
	Rows        int    `json:"rows"`
	Key         string `json:"key,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	CSV         []byte `json:"-"`
}

func NewExportService(db *gorm.DB, cfg *config.Config) (*ExportService, error) {
	svc := &ExportService{db: db, config: cfg}
	if cfg.AWS.AccessKeyID == "" {
		return svc, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		// Degrade to inline CSV exports rather than refusing to start.
		return svc, fmt.Errorf("failed to create AWS session: %w", err)
	}
	svc.s3Client = s3.New(sess)
	return svc, nil
}

// ExportAudits writes one CSV row per audited product, worst score first.
func (s *ExportService) ExportAudits(shopID uuid.UUID) (*ExportResult, error) {
	var audits []models.ProductAudit
	err := s.db.Where("shop_id = ?", shopID).Order("ai_score").Find(&audits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load audits: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Write([]string{
		"product_id", "title", "handle", "ai_score", "critical_issues",
		"warning_issues", "info_issues", "issue_codes", "description_length",
		"has_images", "last_audit_at",
	})

	for _, audit := range audits {
		var critical, warning, info int
		codes := ""
		for _, issue := range audit.Issues {
			switch issue.Severity {
			case models.SeverityCritical:
				critical++
			case models.SeverityWarning:
				warning++
			case models.SeverityInfo:
				info++
			}
			if codes != "" {
				codes += ";"
			}
			codes += issue.Code
		}

		writer.Write([]string{
			strconv.FormatInt(audit.ProductID, 10),
			audit.Title,
			audit.Handle,
			strconv.Itoa(audit.AIScore),
			strconv.Itoa(critical),
			strconv.Itoa(warning),
			strconv.Itoa(info),
			codes,
			strconv.Itoa(audit.DescriptionLength),
			strconv.FormatBool(audit.HasImages),
			audit.LastAuditAt.UTC().Format(time.RFC3339),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to render CSV: %w", err)
	}

	result := &ExportResult{Rows: len(audits), CSV: buf.Bytes()}
	if s.s3Client == nil {
		return result, nil
	}

	key := fmt.Sprintf("exports/%s/audit-%s.csv", shopID, time.Now().UTC().Format("20060102-150405"))
	_, err = s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.config.AWS.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(24 * time.Hour)
	if err != nil {
		logrus.WithError(err).Warn("Failed to presign export URL")
	}

	result.Key = key
	result.DownloadURL = url
	return result, nil
}
