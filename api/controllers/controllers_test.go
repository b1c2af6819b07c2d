package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/internal/auth"
	"github.com/angelmondragon/catalog-backend/internal/characters"
	"github.com/angelmondragon/catalog-backend/internal/genres"
	"github.com/angelmondragon/catalog-backend/internal/images"
	"github.com/angelmondragon/catalog-backend/internal/movies"
	pkgAuth "github.com/angelmondragon/catalog-backend/pkg/auth"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

type envelope struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func serve(t *testing.T, method, pattern string, h http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	router := chi.NewRouter()
	router.Method(method, pattern, h)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return rec, env
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type stubMovies struct {
	created  *movies.CreateInput
	patched  *movies.PatchInput
	filter   *movies.ListFilter
	patchErr error
}

func (s *stubMovies) Create(_ context.Context, input movies.CreateInput) (*movies.CreateResult, error) {
	s.created = &input
	return &movies.CreateResult{ID: 11}, nil
}

func (s *stubMovies) Patch(_ context.Context, _ uint, input movies.PatchInput) error {
	s.patched = &input
	return s.patchErr
}

func (s *stubMovies) Delete(context.Context, uint) error { return nil }

func (s *stubMovies) List(_ context.Context, filter movies.ListFilter) ([]movies.ListItem, error) {
	s.filter = &filter
	return []movies.ListItem{}, nil
}

func (s *stubMovies) Get(_ context.Context, id uint) (*movies.Detail, error) {
	return &movies.Detail{ID: id, Title: "Up"}, nil
}

func TestMovieCreate(t *testing.T) {
	svc := &stubMovies{}
	imageID := uuid.New()
	body := `{"token":"t","title":"Up","releaseDate":"2009-05-29","rating":5,"imageId":"` + imageID.String() + `","characters":3,"genres":[1,2]}`

	rec, env := serve(t, http.MethodPost, "/movies", MovieCreate(svc, testLogger()), jsonRequest(http.MethodPost, "/movies", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, env.Message)
	}
	if string(env.Data) != `{"id":11}` {
		t.Fatalf("unexpected data %s", env.Data)
	}
	if svc.created == nil || svc.created.ImageID == nil || *svc.created.ImageID != imageID {
		t.Fatalf("image id not forwarded: %+v", svc.created)
	}
	if len(svc.created.Characters) != 1 || svc.created.Characters[0] != 3 || len(svc.created.Genres) != 2 {
		t.Fatalf("unexpected associations %+v", svc.created)
	}
}

func TestMovieCreateValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"rating":3}`, "title is required"},
		{"rating range", `{"title":"Up","rating":6}`, "rating must be at most 5"},
		{"date format", `{"title":"Up","releaseDate":"29/05/2009"}`, "releaseDate must be a date formatted yyyy-mm-dd"},
		{"image uuid", `{"title":"Up","imageId":"nope"}`, "imageId must be a valid uuid v4"},
		{"unknown field", `{"title":"Up","director":"x"}`, `field "director" is not allowed`},
		{"empty body", ``, "request body is required"},
		{"bad id", `{"title":"Up","genres":[0]}`, "genres[0] must be at least 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubMovies{}
			rec, env := serve(t, http.MethodPost, "/movies", MovieCreate(svc, testLogger()), jsonRequest(http.MethodPost, "/movies", tc.body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", rec.Code)
			}
			if env.Message != tc.want {
				t.Fatalf("expected %q got %q", tc.want, env.Message)
			}
			if string(env.Data) != "null" {
				t.Fatalf("expected null data got %s", env.Data)
			}
			if svc.created != nil {
				t.Fatal("service should not be called")
			}
		})
	}
}

func TestMoviePatchNullableFields(t *testing.T) {
	svc := &stubMovies{}
	body := `{"imageId":null,"rating":4.5,"genres":[2],"genresAction":"SET"}`
	rec, _ := serve(t, http.MethodPatch, "/movies/{id}", MoviePatch(svc, testLogger()), jsonRequest(http.MethodPatch, "/movies/5", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	in := svc.patched
	if !in.ImageID.Set || in.ImageID.Value != nil {
		t.Fatalf("expected explicit null image, got %+v", in.ImageID)
	}
	if in.ReleaseDate.Set {
		t.Fatal("absent release date must stay unset")
	}
	if in.Rating.Value == nil || *in.Rating.Value != 4.5 {
		t.Fatalf("unexpected rating %+v", in.Rating)
	}
	if in.GenresAction != enums.AssociationSet {
		t.Fatalf("unexpected action %q", in.GenresAction)
	}
}

func TestPatchValidatesPresentZeroValues(t *testing.T) {
	cases := []struct {
		name string
		path string
		body string
		want string
	}{
		{name: "zero rating", path: "/movies/1", body: `{"rating":0}`, want: "rating must be at least 1"},
		{name: "rating above range", path: "/movies/1", body: `{"rating":5.5}`, want: "rating must be at most 5"},
		{name: "empty release date", path: "/movies/1", body: `{"releaseDate":""}`, want: "releaseDate must be a date formatted yyyy-mm-dd"},
		{name: "empty movie image id", path: "/movies/1", body: `{"imageId":""}`, want: "imageId must be a valid uuid v4"},
		{name: "negative age", path: "/characters/1", body: `{"age":-1}`, want: "age must be at least 0"},
		{name: "negative weight", path: "/characters/1", body: `{"weight":-0.5}`, want: "weight must be at least 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			movieSvc, characterSvc := &stubMovies{}, &stubCharacters{}
			pattern, h := "/movies/{id}", MoviePatch(movieSvc, testLogger())
			if strings.HasPrefix(tc.path, "/characters") {
				pattern, h = "/characters/{id}", CharacterPatch(characterSvc, testLogger())
			}
			rec, env := serve(t, http.MethodPatch, pattern, h, jsonRequest(http.MethodPatch, tc.path, tc.body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", rec.Code)
			}
			if env.Message != tc.want {
				t.Fatalf("expected %q got %q", tc.want, env.Message)
			}
			if movieSvc.patched != nil || characterSvc.patched != nil {
				t.Fatal("service should not be called")
			}
		})
	}
}

func TestPatchAcceptsZeroWhereAllowed(t *testing.T) {
	svc := &stubCharacters{}
	rec, _ := serve(t, http.MethodPatch, "/characters/{id}", CharacterPatch(svc, testLogger()), jsonRequest(http.MethodPatch, "/characters/1", `{"age":0,"weight":null}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.patched.Age.Value == nil || *svc.patched.Age.Value != 0 {
		t.Fatalf("expected age 0, got %+v", svc.patched.Age)
	}
	if !svc.patched.Weight.Set || svc.patched.Weight.Value != nil {
		t.Fatalf("expected explicit null weight, got %+v", svc.patched.Weight)
	}
}

func TestMoviePatchRejectsBadPathID(t *testing.T) {
	rec, env := serve(t, http.MethodPatch, "/movies/{id}", MoviePatch(&stubMovies{}, testLogger()), jsonRequest(http.MethodPatch, "/movies/abc", `{"title":"x"}`))
	if rec.Code != http.StatusBadRequest || env.Message != "id must be a positive integer" {
		t.Fatalf("unexpected %d %q", rec.Code, env.Message)
	}
}

func TestMoviesListQuery(t *testing.T) {
	svc := &stubMovies{}
	req := httptest.NewRequest(http.MethodGet, "/movies?name=%20toy%20&genre=4&order=desc", nil)
	rec, env := serve(t, http.MethodGet, "/movies", MoviesList(svc, testLogger()), req)
	if rec.Code != http.StatusOK || string(env.Data) != "[]" {
		t.Fatalf("unexpected %d %s", rec.Code, env.Data)
	}
	if svc.filter.Name != "toy" || svc.filter.GenreID == nil || *svc.filter.GenreID != 4 || svc.filter.Order != enums.SortDesc {
		t.Fatalf("unexpected filter %+v", svc.filter)
	}

	req = httptest.NewRequest(http.MethodGet, "/movies?order=sideways", nil)
	rec, _ = serve(t, http.MethodGet, "/movies", MoviesList(svc, testLogger()), req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

type stubCharacters struct {
	characters.Service
	filter  *characters.ListFilter
	patched *characters.PatchInput
}

func (s *stubCharacters) List(_ context.Context, filter characters.ListFilter) ([]characters.ListItem, error) {
	s.filter = &filter
	return []characters.ListItem{}, nil
}

func (s *stubCharacters) Patch(_ context.Context, _ uint, input characters.PatchInput) error {
	s.patched = &input
	return nil
}

func TestCharactersListQuery(t *testing.T) {
	svc := &stubCharacters{}
	req := httptest.NewRequest(http.MethodGet, "/characters?age=10&weight=12.5&movies=3", nil)
	rec, _ := serve(t, http.MethodGet, "/characters", CharactersList(svc, testLogger()), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	f := svc.filter
	if f.Age == nil || *f.Age != 10 || f.Weight == nil || *f.Weight != 12.5 || f.MovieID == nil || *f.MovieID != 3 {
		t.Fatalf("unexpected filter %+v", f)
	}

	req = httptest.NewRequest(http.MethodGet, "/characters?age=old", nil)
	rec, env := serve(t, http.MethodGet, "/characters", CharactersList(svc, testLogger()), req)
	if rec.Code != http.StatusBadRequest || env.Message != "age must be an integer of at least 0" {
		t.Fatalf("unexpected %d %q", rec.Code, env.Message)
	}
}

func TestCharacterPatchStoryNull(t *testing.T) {
	svc := &stubCharacters{}
	rec, _ := serve(t, http.MethodPatch, "/characters/{id}", CharacterPatch(svc, testLogger()), jsonRequest(http.MethodPatch, "/characters/2", `{"story":null,"age":-1}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative age should fail, got %d", rec.Code)
	}

	rec, _ = serve(t, http.MethodPatch, "/characters/{id}", CharacterPatch(svc, testLogger()), jsonRequest(http.MethodPatch, "/characters/2", `{"story":null}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !svc.patched.Story.Set || svc.patched.Story.Value != nil {
		t.Fatalf("expected explicit null story, got %+v", svc.patched.Story)
	}
}

type stubGenres struct {
	genres.Service
	created *genres.CreateInput
}

func (s *stubGenres) Create(_ context.Context, input genres.CreateInput) (*genres.CreateResult, error) {
	s.created = &input
	return &genres.CreateResult{ID: 1}, nil
}

func TestGenreCreate(t *testing.T) {
	svc := &stubGenres{}
	rec, _ := serve(t, http.MethodPost, "/genres", GenreCreate(svc, testLogger()), jsonRequest(http.MethodPost, "/genres", `{"name":"Drama","movies":[1,1]}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if svc.created.Name != "Drama" || len(svc.created.Movies) != 2 {
		t.Fatalf("unexpected input %+v", svc.created)
	}
}

type stubImages struct {
	uploaded   *images.Upload
	entityType enums.EntityType
	content    []byte
}

func (s *stubImages) Upload(_ context.Context, entityType enums.EntityType, file images.Upload) (*images.UploadResult, error) {
	s.entityType = entityType
	s.uploaded = &file
	data, err := io.ReadAll(file.Body)
	if err != nil {
		return nil, err
	}
	s.content = data
	return &images.UploadResult{ID: uuid.New(), URL: "http://cdn.test/movies/images/poster.png"}, nil
}

func (s *stubImages) Replace(context.Context, uuid.UUID, images.Upload) (*images.ReplaceResult, error) {
	return &images.ReplaceResult{URL: "http://cdn.test/x.png"}, nil
}

func (s *stubImages) Delete(context.Context, uuid.UUID) error { return nil }

func (s *stubImages) Get(_ context.Context, id uuid.UUID) (*images.ImageDTO, error) {
	return nil, errors.New("not used")
}

func multipartRequest(t *testing.T, method, target, field string, files ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range files {
		part, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write([]byte("\x89PNG\r\n\x1a\n"))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImageUpload(t *testing.T) {
	svc := &stubImages{}
	req := multipartRequest(t, http.MethodPost, "/images/movies", "image", "poster.png")
	rec, env := serve(t, http.MethodPost, "/images/movies", ImageUpload(svc, enums.EntityTypeMovie, 1024, testLogger()), req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, env.Message)
	}
	if svc.entityType != enums.EntityTypeMovie || svc.uploaded.FileName != "poster.png" {
		t.Fatalf("unexpected upload %q %+v", svc.entityType, svc.uploaded)
	}
	if !bytes.HasPrefix(svc.content, []byte("\x89PNG")) {
		t.Fatalf("unexpected content %q", svc.content)
	}
}

func TestImageUploadRejections(t *testing.T) {
	cases := []struct {
		name   string
		req    func() *http.Request
		status int
		msg    string
	}{
		{"missing field", func() *http.Request {
			return multipartRequest(t, http.MethodPost, "/images/genres", "file", "a.png")
		}, http.StatusBadRequest, "no image uploaded"},
		{"two files", func() *http.Request {
			return multipartRequest(t, http.MethodPost, "/images/genres", "image", "a.png", "b.png")
		}, http.StatusBadRequest, "only one image can be uploaded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubImages{}
			rec, env := serve(t, http.MethodPost, "/images/genres", ImageUpload(svc, enums.EntityTypeGenre, 1024, testLogger()), tc.req())
			if rec.Code != tc.status || env.Message != tc.msg {
				t.Fatalf("unexpected %d %q", rec.Code, env.Message)
			}
			if svc.uploaded != nil {
				t.Fatal("service should not be called")
			}
		})
	}
}

func TestImageReplaceRequiresUUID(t *testing.T) {
	req := multipartRequest(t, http.MethodPut, "/images/12", "image", "a.png")
	rec, _ := serve(t, http.MethodPut, "/images/{id}", ImageReplace(&stubImages{}, 1024, testLogger()), req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

type stubAuth struct {
	registered *auth.Credentials
}

func (s *stubAuth) Register(_ context.Context, creds auth.Credentials) (*auth.Result, error) {
	s.registered = &creds
	return &auth.Result{ID: 1, Email: creds.Email, Token: "jwt"}, nil
}

func (s *stubAuth) Login(context.Context, auth.Credentials) (*auth.Result, error) {
	return &auth.Result{ID: 1, Email: "a@b.c", Token: "jwt"}, nil
}

func (s *stubAuth) VerifyToken(context.Context, string) (*pkgAuth.AccessTokenClaims, error) {
	return nil, errors.New("not used")
}

func TestAuthRegister(t *testing.T) {
	svc := &stubAuth{}
	rec, env := serve(t, http.MethodPost, "/auth/register", AuthRegister(svc, testLogger()), jsonRequest(http.MethodPost, "/auth/register", `{"email":"a@b.c","password":"secret"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if !strings.Contains(string(env.Data), `"token":"jwt"`) {
		t.Fatalf("unexpected data %s", env.Data)
	}

	rec, env = serve(t, http.MethodPost, "/auth/register", AuthRegister(svc, testLogger()), jsonRequest(http.MethodPost, "/auth/register", `{"email":"a@b.c","password":"pw"}`))
	if rec.Code != http.StatusBadRequest || env.Message != "password must be at least 3 characters" {
		t.Fatalf("unexpected %d %q", rec.Code, env.Message)
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	rec, _ := serve(t, http.MethodGet, "/health/ready", HealthReady(cfg, testLogger(), map[string]Pinger{"db": stubPinger{}}), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	rec, env := serve(t, http.MethodGet, "/health/ready", HealthReady(cfg, testLogger(), map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("down")}}), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable || env.Message != "server failed to handle your request" {
		t.Fatalf("unexpected %d %q", rec.Code, env.Message)
	}
}
