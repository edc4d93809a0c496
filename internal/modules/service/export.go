package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/emonotate/emonotate/internal/infra/blob"
	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"github.com/emonotate/emonotate/internal/pkg/utils/mime"
	"github.com/emonotate/emonotate/internal/telemetry"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MaxDownloadCurveIDs caps how many curves one download-by-ids call may export.
const MaxDownloadCurveIDs = 10

// BlobStore is the object storage the export packages are written to.
type BlobStore interface {
	UploadBytes(ctx context.Context, key string, b []byte, contentType string) (*blob.UploadMeta, error)
	PresignGet(ctx context.Context, key string, expire time.Duration) (string, error)
}

type ExportService interface {
	ExportRequest(ctx context.Context, actor *model.EmailUser, requestID uint) (*ExportOutput, error)
	ExportCurves(ctx context.Context, ids []uint) (*ExportOutput, error)
}

type ExportOutput struct {
	URL   string `json:"url"`
	Key   string `json:"-"`
	Count int    `json:"-"`
}

type exportService struct {
	requests repo.RequestRepo
	curves   repo.CurveRepo
	store    BlobStore
	prefix   string
	expire   time.Duration
	now      func() time.Time
}

func NewExportService(requests repo.RequestRepo, curves repo.CurveRepo, store BlobStore, prefix string, expire time.Duration) ExportService {
	if expire <= 0 {
		expire = 15 * time.Minute
	}
	if prefix == "" {
		prefix = "exports"
	}
	return &exportService{
		requests: requests,
		curves:   curves,
		store:    store,
		prefix:   prefix,
		expire:   expire,
		now:      time.Now,
	}
}

// ExportRequest packages every curve recorded under the request's room code.
// The owner, staff and the request's participants may export it.
func (s *exportService) ExportRequest(ctx context.Context, actor *model.EmailUser, requestID uint) (*ExportOutput, error) {
	start := s.now()
	req, err := requestAccess(ctx, s.requests, actor, requestID, true)
	if err != nil {
		return nil, err
	}

	curves, err := s.curves.ListByRoomName(ctx, req.RoomName)
	if err != nil {
		return nil, err
	}

	out, err := s.publish(ctx, req.RoomName, &req.ID, curves)
	s.record(ctx, "request", start, out, err)
	return out, err
}

// ExportCurves packages an explicit id list. Unknown ids are left out.
func (s *exportService) ExportCurves(ctx context.Context, ids []uint) (*ExportOutput, error) {
	if len(ids) == 0 {
		return nil, ErrNoCurveIDs
	}
	if len(ids) > MaxDownloadCurveIDs {
		return nil, ErrTooManyCurveIDs
	}

	start := s.now()
	curves, err := s.curves.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out, err := s.publish(ctx, "", nil, curves)
	s.record(ctx, "ids", start, out, err)
	return out, err
}

func (s *exportService) record(ctx context.Context, kind string, start time.Time, out *ExportOutput, err error) {
	ms := float64(s.now().Sub(start).Microseconds()) / 1000
	if err != nil {
		telemetry.RecordExportError(ctx, kind, ms)
		return
	}
	telemetry.RecordExportSuccess(ctx, kind, out.Count, ms)
}

type exportedCurve struct {
	ID          uint           `json:"id"`
	UserID      uint           `json:"user_id"`
	Username    string         `json:"username,omitempty"`
	ContentID   uint           `json:"content_id"`
	ValueTypeID uint           `json:"value_type_id"`
	RoomName    string         `json:"room_name"`
	Version     string         `json:"version"`
	Locked      bool           `json:"locked"`
	Created     time.Time      `json:"created"`
	Values      datatypes.JSON `json:"values"`
}

type exportManifest struct {
	RequestID   *uint     `json:"request_id,omitempty"`
	RoomName    string    `json:"room_name,omitempty"`
	CurveIDs    []uint    `json:"curve_ids"`
	Count       int       `json:"count"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (s *exportService) publish(ctx context.Context, roomName string, requestID *uint, curves []*model.Curve) (*ExportOutput, error) {
	now := s.now().UTC()
	b, err := buildPackage(curves, exportManifest{
		RequestID:   requestID,
		RoomName:    roomName,
		GeneratedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("build export package: %w", err)
	}

	scope := roomName
	if scope == "" {
		scope = "curves"
	}
	key := fmt.Sprintf("%s/%s/%s/%s.zip", s.prefix, scope, now.Format("2006/01/02"), uuid.NewString())
	contentType, _ := mime.Detect(b, "export.zip")

	if _, err := s.store.UploadBytes(ctx, key, b, contentType); err != nil {
		return nil, fmt.Errorf("upload export package: %w", err)
	}
	url, err := s.store.PresignGet(ctx, key, s.expire)
	if err != nil {
		return nil, fmt.Errorf("presign export package: %w", err)
	}
	return &ExportOutput{URL: url, Key: key, Count: len(curves)}, nil
}

// buildPackage zips one curve_<id>.json per curve plus manifest.json.
func buildPackage(curves []*model.Curve, manifest exportManifest) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	manifest.CurveIDs = make([]uint, 0, len(curves))
	for _, c := range curves {
		ec := exportedCurve{
			ID:          c.ID,
			UserID:      c.UserID,
			ContentID:   c.ContentID,
			ValueTypeID: c.ValueTypeID,
			RoomName:    c.RoomName,
			Version:     c.Version,
			Locked:      c.Locked,
			Created:     c.Created,
			Values:      c.Values,
		}
		if c.User != nil {
			ec.Username = c.User.Username
		}
		if err := writeJSON(zw, fmt.Sprintf("curve_%d.json", c.ID), ec); err != nil {
			return nil, err
		}
		manifest.CurveIDs = append(manifest.CurveIDs, c.ID)
	}
	manifest.Count = len(manifest.CurveIDs)

	if err := writeJSON(zw, "manifest.json", manifest); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	b, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
