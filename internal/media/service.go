package media

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"projectshelf-backend/internal/store"
)

var (
	ErrNotFound     = store.ErrNotFound
	ErrForbidden    = errors.New("media belongs to another user")
	ErrNoUploader   = errors.New("media uploads are not configured")
	ErrUnsupported  = errors.New("unsupported media type")
	ErrWrongGallery = errors.New("case study belongs to another user")
)

type Service struct {
	store    store.Store
	uploader Uploader
	log      *slog.Logger
}

// NewService accepts a nil uploader; upload calls then fail with
// ErrNoUploader while reads and deletes of existing rows keep working.
func NewService(s store.Store, uploader Uploader, log *slog.Logger) *Service {
	return &Service{store: s, uploader: uploader, log: log}
}

func (s *Service) Configured() bool {
	if s.uploader == nil {
		return false
	}
	if c, ok := s.uploader.(*CloudinaryClient); ok && c == nil {
		return false
	}
	return true
}

// SaveUpload pushes the temp file to the remote host and records a media
// row only once the remote write succeeded.
func (s *Service) SaveUpload(ctx context.Context, userID int64, caseStudyID *int64, tempPath, filename, mimeType string) (store.Media, error) {
	if !s.Configured() {
		return store.Media{}, ErrNoUploader
	}

	mediaType, err := typeForMime(mimeType)
	if err != nil {
		return store.Media{}, err
	}

	if caseStudyID != nil {
		cs, err := s.store.GetCaseStudy(ctx, *caseStudyID)
		if err != nil {
			return store.Media{}, err
		}
		if cs.UserID != userID {
			return store.Media{}, ErrWrongGallery
		}
	}

	result, err := s.uploader.Upload(ctx, tempPath, filename)
	if err != nil {
		return store.Media{}, err
	}

	m, err := s.store.CreateMedia(ctx, store.NewMedia{
		UserID:      userID,
		CaseStudyID: caseStudyID,
		URL:         result.URL,
		Type:        mediaType,
		Name:        filename,
	})
	if err != nil {
		// The remote asset is now orphaned; reclaim it so retries don't
		// accumulate copies.
		if destroyErr := s.uploader.Destroy(ctx, result.PublicID, result.ResourceType); destroyErr != nil {
			s.log.Warn("media upload: orphan cleanup failed", slog.String("public_id", result.PublicID), slog.String("error", destroyErr.Error()))
		}
		return store.Media{}, err
	}
	return m, nil
}

func (s *Service) ListOwn(ctx context.Context, userID int64) ([]store.Media, error) {
	return s.store.ListMediaByUser(ctx, userID)
}

func (s *Service) ListByCaseStudy(ctx context.Context, caseStudyID int64) ([]store.Media, error) {
	if _, err := s.store.GetCaseStudy(ctx, caseStudyID); err != nil {
		return nil, err
	}
	return s.store.ListMediaByCaseStudy(ctx, caseStudyID)
}

// Delete removes the row after a best-effort remote destroy; a failed
// remote delete never blocks the local one.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	m, err := s.store.GetMedia(ctx, id)
	if err != nil {
		return err
	}
	if m.UserID != userID {
		return ErrForbidden
	}

	if s.Configured() {
		publicID := PublicIDFromURL(m.URL)
		resourceType := m.Type
		if publicID != "" {
			if err := s.uploader.Destroy(ctx, publicID, resourceType); err != nil {
				s.log.Warn("media delete: remote destroy failed", slog.Int64("media_id", id), slog.String("error", err.Error()))
			}
		}
	}
	return s.store.DeleteMedia(ctx, id)
}

func typeForMime(mimeType string) (string, error) {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return store.MediaTypeImage, nil
	case strings.HasPrefix(mimeType, "video/"):
		return store.MediaTypeVideo, nil
	default:
		return "", ErrUnsupported
	}
}
