// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/cache"
	"github.com/olegiv/oblog/internal/middleware"
	"github.com/olegiv/oblog/internal/model"
	"github.com/olegiv/oblog/internal/service"
	"github.com/olegiv/oblog/internal/session"
	"github.com/olegiv/oblog/internal/testutil"
)

const testPassword = "secret123"

// testApp is a running server backed by a fresh database with two admins
// (alice, carol) and one user (bob).
type testApp struct {
	db      *sql.DB
	server  *httptest.Server
	blog    *service.BlogService
	uploads *service.UploadService
	alice   *auth.Principal
	carol   *auth.Principal
	bob     *auth.Principal
}

func newTestApp(t *testing.T, opts ...func(*RouterConfig)) *testApp {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	logger := testutil.TestLoggerSilent()
	listing := cache.NewMemoryCache(cache.MemoryCacheOptions{})
	t.Cleanup(func() { _ = listing.Close() })

	uploads := service.NewUploadService(t.TempDir(), 64, logger)
	blog := service.NewBlogService(db, listing,
		service.WithAssetRemover(uploads),
		service.WithLogger(logger),
	)

	cfg := RouterConfig{
		DB:              db,
		Sessions:        session.New(db, time.Hour, true),
		Accounts:        service.NewAccountService(db, logger),
		Blog:            blog,
		Uploads:         uploads,
		SecurityHeaders: middleware.DefaultSecurityHeadersConfig(true),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	server := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(server.Close)

	return &testApp{
		db:      db,
		server:  server,
		blog:    blog,
		uploads: uploads,
		alice:   auth.NewAdminPrincipal(testutil.CreateAdmin(t, db, "alice", "alice@example.com", testPassword)),
		carol:   auth.NewAdminPrincipal(testutil.CreateAdmin(t, db, "carol", "carol@example.com", testPassword)),
		bob:     auth.NewUserPrincipal(testutil.CreateUser(t, db, "Bob", "Reader", "bob@example.com", testPassword)),
	}
}

// client returns a client with its own cookie jar that does not follow
// redirects.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// loggedIn returns a client signed in as email.
func (a *testApp) loggedIn(t *testing.T, email string) *http.Client {
	t.Helper()
	c := a.client(t)
	resp := a.postForm(t, c, RouteLogin, url.Values{
		fieldEmail:    {email},
		fieldPassword: {testPassword},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.NotEqual(t, RouteLogin, resp.Header.Get("Location"), "login failed for %s", email)
	// consume the welcome flash
	a.get(t, c, RouteLogin)
	return c
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) *http.Response {
	t.Helper()
	resp, err := c.Get(a.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (a *testApp) postForm(t *testing.T, c *http.Client, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// postMultipart posts fields plus an optional featured image.
func (a *testApp) postMultipart(t *testing.T, c *http.Client, path string, fields map[string]string, filename string, file []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile(fieldFeaturedImage, filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// follow requests the redirect target of resp with the same client.
func (a *testApp) follow(t *testing.T, c *http.Client, resp *http.Response) *http.Response {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	return a.get(t, c, resp.Header.Get("Location"))
}

// createPost creates a post owned by owner directly through the service.
func (a *testApp) createPost(t *testing.T, owner *auth.Principal, publish bool) model.Post {
	t.Helper()
	p, err := a.blog.CreatePost(t.Context(), owner, model.PostInput{
		Title:   "A post about Go",
		Content: "Some **markdown** content for the post.",
		Publish: publish,
	})
	require.NoError(t, err)
	return p
}

// viewResponse mirrors pageView with the data left raw.
type viewResponse struct {
	Success   bool            `json:"success"`
	Flash     *flashView      `json:"flash"`
	Principal *principalView  `json:"principal"`
	Data      json.RawMessage `json:"data"`
}

func decodeView(t *testing.T, resp *http.Response) viewResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var v viewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	require.True(t, v.Success)
	return v
}

func decodeData(t *testing.T, v viewResponse, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(v.Data, dst))
}

// flashOf follows resp and returns the flash shown on the next view.
func (a *testApp) flashOf(t *testing.T, c *http.Client, resp *http.Response) *flashView {
	t.Helper()
	v := decodeView(t, a.follow(t, c, resp))
	require.NotNil(t, v.Flash, "expected a flash message")
	return v.Flash
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{G: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
