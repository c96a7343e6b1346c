package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"projectshelf-backend/internal/store"
)

type fakeUploader struct {
	uploads   int
	destroys  []string
	failNext  bool
	resultURL string
}

func (f *fakeUploader) Upload(ctx context.Context, filePath, filename string) (UploadResult, error) {
	if f.failNext {
		f.failNext = false
		return UploadResult{}, errors.New("remote unavailable")
	}
	f.uploads++
	url := f.resultURL
	if url == "" {
		url = "https://res.cloudinary.com/demo/image/upload/v1/shelf/" + filename
	}
	return UploadResult{URL: url, PublicID: "shelf/" + filename, ResourceType: "image"}, nil
}

func (f *fakeUploader) Destroy(ctx context.Context, publicID, resourceType string) error {
	f.destroys = append(f.destroys, publicID)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUploader, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemory()
	up := &fakeUploader{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(st, up, log), up, st
}

func seedUser(t *testing.T, st *store.MemoryStore, username string) store.User {
	t.Helper()
	user, err := st.CreateUser(context.Background(), store.NewUser{
		Username: username, Email: username + "@example.com", PasswordHash: "x", Name: username, Theme: "minimal",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func tempUpload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload")
	if err := os.WriteFile(path, []byte("fake image bytes"), 0o600); err != nil {
		t.Fatalf("write temp upload: %v", err)
	}
	return path
}

func TestSaveUploadRecordsRowAfterRemoteWrite(t *testing.T) {
	svc, up, st := newTestService(t)
	user := seedUser(t, st, "ada")

	m, err := svc.SaveUpload(context.Background(), user.ID, nil, tempUpload(t), "cover.png", "image/png")
	if err != nil {
		t.Fatalf("save upload: %v", err)
	}
	if up.uploads != 1 {
		t.Fatalf("remote uploads = %d, want 1", up.uploads)
	}
	if m.Type != store.MediaTypeImage || m.Name != "cover.png" || m.URL == "" {
		t.Fatalf("media row wrong: %+v", m)
	}
}

func TestSaveUploadRejectsUnsupportedTypeBeforeRemoteWrite(t *testing.T) {
	svc, up, st := newTestService(t)
	user := seedUser(t, st, "ada")

	_, err := svc.SaveUpload(context.Background(), user.ID, nil, tempUpload(t), "doc.pdf", "application/pdf")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("got %v, want ErrUnsupported", err)
	}
	if up.uploads != 0 {
		t.Fatal("unsupported file still reached the remote host")
	}
}

func TestSaveUploadNoRowOnRemoteFailure(t *testing.T) {
	svc, up, st := newTestService(t)
	user := seedUser(t, st, "ada")
	up.failNext = true

	if _, err := svc.SaveUpload(context.Background(), user.ID, nil, tempUpload(t), "cover.png", "image/png"); err == nil {
		t.Fatal("expected remote failure to surface")
	}
	rows, err := st.ListMediaByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("list media: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("media row written despite failed upload: %d rows", len(rows))
	}
}

func TestSaveUploadChecksCaseStudyOwnership(t *testing.T) {
	svc, _, st := newTestService(t)
	ada := seedUser(t, st, "ada")
	grace := seedUser(t, st, "grace")

	cs, err := st.CreateCaseStudy(context.Background(), store.NewCaseStudy{
		UserID: grace.ID, Title: "t", Summary: "s", Slug: "t", Status: store.StatusDraft,
	})
	if err != nil {
		t.Fatalf("seed case study: %v", err)
	}

	if _, err := svc.SaveUpload(context.Background(), ada.ID, &cs.ID, tempUpload(t), "cover.png", "image/png"); !errors.Is(err, ErrWrongGallery) {
		t.Fatalf("got %v, want ErrWrongGallery", err)
	}
}

func TestDeleteDestroysRemoteAsset(t *testing.T) {
	svc, up, st := newTestService(t)
	user := seedUser(t, st, "ada")

	m, err := svc.SaveUpload(context.Background(), user.ID, nil, tempUpload(t), "cover.png", "image/png")
	if err != nil {
		t.Fatalf("save upload: %v", err)
	}

	other := seedUser(t, st, "grace")
	if err := svc.Delete(context.Background(), other.ID, m.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign delete: got %v, want ErrForbidden", err)
	}

	if err := svc.Delete(context.Background(), user.ID, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(up.destroys) != 1 || up.destroys[0] != "shelf/cover" {
		t.Fatalf("remote destroy calls = %v, want [shelf/cover]", up.destroys)
	}
	if _, err := st.GetMedia(context.Background(), m.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("media row survived delete: %v", err)
	}
}

func TestPublicIDFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712345678/shelf/cover.png", "shelf/cover"},
		{"https://res.cloudinary.com/demo/video/upload/shelf/clip.mp4", "shelf/clip"},
		{"https://res.cloudinary.com/demo/image/upload/v99/deep/nested/asset.jpg", "deep/nested/asset"},
		{"https://example.com/not/cloudinary.png", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := PublicIDFromURL(tc.url); got != tc.want {
			t.Errorf("PublicIDFromURL(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
