package plant

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/plantswap/internal/api"
	"github.com/fkhayef/plantswap/internal/apitest"
	"github.com/fkhayef/plantswap/internal/notification"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")

type fixture struct {
	srv   *apitest.Server
	svc   *Service
	owner *apitest.User
	ctx   context.Context
	rec   *notification.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	owner := srv.AddUser("ada@example.com", "Ada", "password123")
	rec := notification.NewRecorder()
	ctx := srv.As(notification.WithNotifier(context.Background(), rec), owner)

	return &fixture{
		srv:   srv,
		svc:   NewService(NewRepository(srv.Client()), nil),
		owner: owner,
		ctx:   ctx,
		rec:   rec,
	}
}

func (f *fixture) only(t *testing.T) notification.Notification {
	t.Helper()
	notes := f.rec.Notifications()
	require.Len(t, notes, 1)
	return notes[0]
}

func TestCreate_SuccessReloadsCatalog(t *testing.T) {
	f := newFixture(t)
	existing := f.srv.AddPlant(f.owner.ID, "Old Fern")
	cat := NewCatalog()

	p, err := f.svc.Create(f.ctx, cat, &CreatePlantRequest{
		Name:        "  Monstera ",
		Description: "Big leaves",
		City:        "Oslo",
		Tags:        []string{"tropical", "large"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Monstera", p.Name)
	assert.Equal(t, []string{"tropical", "large"}, p.Tags)
	assert.Equal(t, f.owner.ID, p.OwnerID)

	n := f.only(t)
	assert.Equal(t, "Plant created", n.Title)
	assert.Equal(t, `Plant "Monstera" has been successfully created`, n.Description)
	assert.Equal(t, notification.StatusSuccess, n.Status)

	got := cat.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, existing.ID, got[0].ID)
	assert.Equal(t, p.ID, got[1].ID)
}

func TestCreate_WithImage(t *testing.T) {
	f := newFixture(t)

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 2048)...)
	_, err := f.svc.Create(f.ctx, nil, &CreatePlantRequest{
		Name:  "Fern",
		Image: &Image{Filename: "fern.png", Content: bytes.NewReader(content)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Plant created", f.only(t).Title)
}

func TestCreate_RejectsNonImage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, nil, &CreatePlantRequest{
		Name:  "Fern",
		Image: &Image{Filename: "notes.txt", Content: strings.NewReader("just some text")},
	})
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Equal(t, "Invalid file type", f.only(t).Title)
	assert.Zero(t, f.srv.Hits("POST /plants/create"))
}

func TestCreate_NameRequired(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, nil, &CreatePlantRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrNameRequired)
	assert.Len(t, f.rec.Notifications(), 1)
	assert.Zero(t, f.srv.Hits("POST /plants/create"))
}

func TestCreate_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		withImage bool
		wantTitle string
		wantDesc  string
	}{
		{"unauthorized", http.StatusUnauthorized, false, "Unauthorized", "You are not logged in"},
		{"server error with image", http.StatusInternalServerError, true, "Image upload not configured",
			"The image upload has not been configured for this web app. Please remove the image from the ad"},
		{"server error without image", http.StatusInternalServerError, false, "Error creating plant",
			"injected failure for POST /plants/create"},
		{"forbidden", http.StatusForbidden, false, "Forbidden", "You do not have permission for this action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.srv.Fail("POST /plants/create", tt.status)

			req := &CreatePlantRequest{Name: "Fern"}
			if tt.withImage {
				req.Image = &Image{Filename: "fern.png", Content: bytes.NewReader(pngHeader)}
			}

			_, err := f.svc.Create(f.ctx, nil, req)
			require.Error(t, err)

			n := f.only(t)
			assert.Equal(t, tt.wantTitle, n.Title)
			assert.Equal(t, tt.wantDesc, n.Description)
			assert.Equal(t, notification.StatusError, n.Status)
		})
	}
}

func TestCreate_ImageUploadNotConfigured(t *testing.T) {
	f := newFixture(t)
	f.srv.ImageUploadDisabled = true

	_, err := f.svc.Create(f.ctx, nil, &CreatePlantRequest{
		Name:  "Fern",
		Image: &Image{Filename: "fern.png", Content: bytes.NewReader(pngHeader)},
	})
	require.Error(t, err)
	assert.Equal(t, "Image upload not configured", f.only(t).Title)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	p := f.srv.AddPlant(f.owner.ID, "Fern")
	cat := NewCatalog()
	_, err := f.svc.ListOwn(f.ctx, cat)
	require.NoError(t, err)
	require.Len(t, cat.Snapshot(), 1)

	require.NoError(t, f.svc.Delete(f.ctx, cat, p.ID))
	n := f.only(t)
	assert.Equal(t, "Plant deleted", n.Title)
	assert.Equal(t, "The plant has been deleted.", n.Description)
	assert.Empty(t, cat.Snapshot())
}

func TestDelete_NotOwner(t *testing.T) {
	f := newFixture(t)
	other := f.srv.AddUser("bob@example.com", "Bob", "password123")
	p := f.srv.AddPlant(other.ID, "Cactus")

	err := f.svc.Delete(f.ctx, nil, p.ID)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, "Unauthorized", f.only(t).Title)
}

func TestDelete_Missing(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Delete(f.ctx, nil, uuid.New())
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.Equal(t, "Not Found", f.only(t).Title)
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	p := f.srv.AddPlant(f.owner.ID, "Fern")

	got, err := f.svc.GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fern", got.Name)
	assert.Empty(t, f.rec.Notifications())

	_, err = f.svc.GetByID(f.ctx, uuid.New())
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestListOwn_RequiresLogin(t *testing.T) {
	f := newFixture(t)
	rec := notification.NewRecorder()

	_, err := f.svc.ListOwn(notification.WithNotifier(context.Background(), rec), NewCatalog())
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Len(t, rec.Notifications(), 1)
}
