package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/scorewire/warroom/internal/domain"
)

// Archiver implements domain.GradeArchiver by writing one JSON object per
// graded trade, partitioned by grading month.
//
// Key schema:
//
//	grades/2026-09/{tradeID}.json
type Archiver struct {
	uploader *manager.Uploader
	bucket   string
}

// NewArchiver creates an Archiver uploading to the client's bucket. Uploads
// go through the SDK upload manager, which streams the body and switches to
// concurrent multipart parts automatically past its threshold.
func NewArchiver(c *Client) *Archiver {
	return &Archiver{
		uploader: manager.NewUploader(c.S3()),
		bucket:   c.Bucket(),
	}
}

// ArchiveGrade uploads the full trade record, wire-format request included,
// as a single compact JSON object. The primary store keeps its own copy;
// this one exists so graded trades survive database retention windows.
func (a *Archiver) ArchiveGrade(ctx context.Context, rec domain.TradeRecord) error {
	body, err := marshalRecord(rec)
	if err != nil {
		return fmt.Errorf("s3blob: marshal trade %s: %w", rec.ID, err)
	}

	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(gradeKey(rec)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3blob: archive trade %s: %w", rec.ID, err)
	}
	return nil
}

func gradeKey(rec domain.TradeRecord) string {
	return fmt.Sprintf("grades/%s/%s.json", rec.CreatedAt.Format("2006-01"), rec.ID)
}

// archivedTrade is the stored shape. Request is re-embedded as raw JSON so
// the archived object is self-contained and directly queryable.
type archivedTrade struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"session_id"`
	UserKey      string          `json:"user_key"`
	Mode         domain.TradeMode `json:"mode"`
	Sport        domain.Sport    `json:"sport"`
	HomeTeam     string          `json:"home_team"`
	PartnerTeam  string          `json:"partner_team"`
	PartnerTeam2 string          `json:"partner_team2,omitempty"`
	Request      json.RawMessage `json:"request"`
	Grade        string          `json:"grade"`
	Reasoning    string          `json:"reasoning"`
	Danger       bool            `json:"danger"`
	CreatedAt    string          `json:"created_at"`
}

func marshalRecord(rec domain.TradeRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	at := archivedTrade{
		ID:           rec.ID,
		SessionID:    rec.SessionID,
		UserKey:      rec.UserKey,
		Mode:         rec.Mode,
		Sport:        rec.Sport,
		HomeTeam:     rec.HomeTeam,
		PartnerTeam:  rec.PartnerTeam,
		PartnerTeam2: rec.PartnerTeam2,
		Request:      json.RawMessage(rec.Request),
		Grade:        rec.Grade,
		Reasoning:    rec.Reasoning,
		Danger:       rec.Danger,
		CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := enc.Encode(at); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.GradeArchiver = (*Archiver)(nil)
