package handler

import (
	"bytes"
	"encoding/json"
	"image/color"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gallery/internal/auth"
	models "gallery/internal/domain/models/gallery"
	"gallery/internal/middleware"
	"gallery/internal/repository/memory"
	service "gallery/internal/service/gallery"
	"gallery/internal/storage"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	ctrl    *service.Controller
	fs      afero.Fs
	token   string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := discardLogger()

	store := memory.NewStore()
	fs := afero.NewMemMapFs()
	content := storage.NewFilesystemStore(fs, "/media", logger)
	ctrl := service.NewController(
		memory.NewFolderRepository(store),
		memory.NewArtworkRepository(store),
		memory.NewTransactionManager(store),
		content,
		logger,
	)

	provider, err := auth.NewLocalProvider("artist@mock.com", "password123", "test-secret", logger)
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}

	galleryHandler := NewGalleryHandler(ctrl, logger)
	treeHandler := NewTreeHandler(ctrl, logger)
	folderHandler := NewFolderHandler(ctrl, false, logger)
	artworkHandler := NewArtworkHandler(ctrl, logger)
	authHandler := NewAuthHandler(provider, provider, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", galleryHandler.HealthCheck)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)
	mux.HandleFunc("GET /api/gallery", galleryHandler.GetListing)
	mux.HandleFunc("POST /api/reload", galleryHandler.Reload)
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.RenameFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("POST /api/artworks", artworkHandler.CreateArtwork)
	mux.HandleFunc("GET /api/artworks/{id}", artworkHandler.GetArtwork)
	mux.HandleFunc("PATCH /api/artworks/{id}", artworkHandler.UpdateArtwork)
	mux.HandleFunc("DELETE /api/artworks/{id}", artworkHandler.DeleteArtwork)
	mux.Handle("GET /media/", content.Handler())

	var h http.Handler = mux
	h = middleware.AuthMiddleware(provider, middleware.DefaultPublicRoutes("/media"), logger)(h)
	h = middleware.Recovery(logger)(h)

	ts := &testServer{t: t, handler: h, ctrl: ctrl, fs: fs}
	ts.token = ts.login("artist@mock.com", "password123")
	return ts
}

func (ts *testServer) login(email, password string) string {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, false)
	if rec.Code != http.StatusOK {
		ts.t.Fatalf("login status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	decode(ts.t, rec, &resp)
	return resp.Token
}

func (ts *testServer) do(method, target string, body any, authed bool) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	return ts.serve(req)
}

func (ts *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func (ts *testServer) mkdir(parent, name string) models.Folder {
	ts.t.Helper()
	rec := ts.do(http.MethodPost, "/api/folders", CreateFolderRequest{Name: name, ParentPath: parent}, true)
	if rec.Code != http.StatusCreated {
		ts.t.Fatalf("create folder %s/%s: status = %d body = %s", parent, name, rec.Code, rec.Body.String())
	}
	var f models.Folder
	decode(ts.t, rec, &f)
	return f
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := imaging.New(8, 6, color.NRGBA{R: 10, G: 120, B: 200, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t)

	t.Run("health is public", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/health", nil, false)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("api requires a token", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/tree", nil, false)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Errorf("content type = %q", ct)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/tree", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		if rec := ts.serve(req); rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "artist@mock.com", "password": "nope"}, false)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("me", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/auth/me", nil, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var body map[string]any
		decode(t, rec, &body)
		if body["email"] != "artist@mock.com" {
			t.Errorf("me = %v", body)
		}
	})
}

func TestFolderLifecycle(t *testing.T) {
	ts := newTestServer(t)

	paintings := ts.mkdir("", "Paintings")
	ts.mkdir("Paintings", "Oils")
	ts.mkdir("Paintings/Oils", "Landscapes")

	t.Run("listing", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/gallery?path=Paintings", nil, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var listing models.Listing
		decode(t, rec, &listing)
		if listing.Folder == nil || listing.Folder.ID != paintings.ID {
			t.Errorf("folder = %+v", listing.Folder)
		}
		if len(listing.Subfolders) != 1 || listing.Subfolders[0].Name != "Oils" {
			t.Errorf("subfolders = %+v", listing.Subfolders)
		}
	})

	t.Run("duplicate returns existing with 409", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/folders", CreateFolderRequest{Name: "Paintings"}, true)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d", rec.Code)
		}
		var existing models.Folder
		decode(t, rec, &existing)
		if existing.ID != paintings.ID {
			t.Errorf("existing = %+v", existing)
		}
	})

	t.Run("missing parent", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/folders", CreateFolderRequest{Name: "X", ParentPath: "Nowhere"}, true)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/folders", CreateFolderRequest{Name: "   "}, true)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/folders", map[string]string{"name": "X", "parent_id": "1"}, true)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("rename propagates", func(t *testing.T) {
		rec := ts.do(http.MethodPatch, "/api/folders/"+paintings.ID, RenameFolderRequest{Name: "Pinturas"}, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
		}
		deep, err := ts.ctrl.FolderAt(models.Path{"Pinturas", "Oils", "Landscapes"})
		if err != nil {
			t.Fatalf("FolderAt: %v", err)
		}
		if deep.Name != "Landscapes" {
			t.Errorf("deep = %+v", deep)
		}
	})

	t.Run("rename unknown", func(t *testing.T) {
		rec := ts.do(http.MethodPatch, "/api/folders/missing", RenameFolderRequest{Name: "X"}, true)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("bad cascade flag", func(t *testing.T) {
		rec := ts.do(http.MethodDelete, "/api/folders/"+paintings.ID+"?cascade=maybe", nil, true)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("cascade delete", func(t *testing.T) {
		rec := ts.do(http.MethodDelete, "/api/folders/"+paintings.ID+"?cascade=true", nil, true)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
		}
		tree := ts.ctrl.Tree()
		if len(tree.Folders) != 0 {
			t.Errorf("tree folders = %+v", tree.Folders)
		}
	})
}

func TestArtworkLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ts.mkdir("", "Pinturas")

	var created models.Artwork
	t.Run("json with image url", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/artworks", CreateArtworkRequest{
			Title:      "Retrato de una Dama",
			ImageURL:   "https://images.example.com/dama.jpg",
			FolderPath: "Pinturas",
		}, true)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
		}
		decode(t, rec, &created)
		if !models.Equals(created.FolderPath, models.Path{"Pinturas"}) {
			t.Errorf("folder path = %v", created.FolderPath)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/artworks", CreateArtworkRequest{ImageURL: "https://x/y.png"}, true)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("image url must be a uri", func(t *testing.T) {
		rec := ts.do(http.MethodPost, "/api/artworks", CreateArtworkRequest{Title: "Loose", ImageURL: "study.png"}, true)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("patch clears description with null", func(t *testing.T) {
		rec := ts.do(http.MethodPatch, "/api/artworks/"+created.ID, map[string]any{"description": "oil on canvas"}, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
		}
		rec = ts.do(http.MethodPatch, "/api/artworks/"+created.ID, map[string]any{"description": nil}, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var updated models.Artwork
		decode(t, rec, &updated)
		if updated.Description != "" || updated.Title != "Retrato de una Dama" {
			t.Errorf("updated = %+v", updated)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := ts.do(http.MethodDelete, "/api/artworks/"+created.ID, nil, true)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
		rec = ts.do(http.MethodGet, "/api/artworks/"+created.ID, nil, true)
		if rec.Code != http.StatusNotFound {
			t.Errorf("get after delete status = %d", rec.Code)
		}
	})
}

func multipartRequest(t *testing.T, fields map[string]string, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if data != nil {
		part, err := mw.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(data)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/artworks", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestArtworkUpload(t *testing.T) {
	ts := newTestServer(t)
	ts.mkdir("", "Esculturas")

	req := multipartRequest(t, map[string]string{"title": "Bust", "folder_path": "Esculturas"}, "bust.png", pngBytes(t))
	req.Header.Set("Authorization", "Bearer "+ts.token)
	rec := ts.serve(req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var artwork models.Artwork
	decode(t, rec, &artwork)
	if !strings.HasPrefix(artwork.ImageURL, "/media/artworks/Esculturas/") {
		t.Fatalf("image url = %q", artwork.ImageURL)
	}

	// The uploaded blob is served without a token
	media := ts.serve(httptest.NewRequest(http.MethodGet, artwork.ImageURL, nil))
	if media.Code != http.StatusOK {
		t.Fatalf("media status = %d", media.Code)
	}
	if !bytes.Equal(media.Body.Bytes(), pngBytes(t)) {
		t.Errorf("served bytes differ")
	}

	t.Run("non-image rejected", func(t *testing.T) {
		req := multipartRequest(t, map[string]string{"title": "Notes"}, "notes.txt", []byte("plain text"))
		req.Header.Set("Authorization", "Bearer "+ts.token)
		rec := ts.serve(req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d body = %s", rec.Code, rec.Body.String())
		}
	})
}

func TestReload(t *testing.T) {
	ts := newTestServer(t)
	ts.mkdir("", "Pinturas")

	rec := ts.do(http.MethodPost, "/api/reload", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var tree models.TreeNode
	decode(t, rec, &tree)
	if len(tree.Folders) != 1 || tree.Folders[0].Name != "Pinturas" {
		t.Errorf("tree = %+v", tree)
	}
}
