package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Gorstka/Yatube/internal/cache"
	"github.com/Gorstka/Yatube/internal/domain"
	"github.com/Gorstka/Yatube/internal/media"
	"github.com/Gorstka/Yatube/internal/metrics"
	"github.com/Gorstka/Yatube/internal/repository"
	"github.com/Gorstka/Yatube/internal/service"
	"github.com/Gorstka/Yatube/internal/testutil"
	"github.com/Gorstka/Yatube/pkg/jwt"
	"github.com/Gorstka/Yatube/pkg/middleware"
	"github.com/Gorstka/Yatube/pkg/response"
	"github.com/Gorstka/Yatube/pkg/storage"
)

// smallGIF is a 2x1 GIF used as the upload fixture.
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0c,
	0x0a, 0x00, 0x3b,
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type testEnv struct {
	t       *testing.T
	db      *gorm.DB
	repos   repository.Repositories
	router  *gin.Engine
	tokens  *jwt.Manager
	clock   *fakeClock
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	repos := repository.NewGormRepositories(db)

	mediaDir := t.TempDir()
	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: mediaDir, URLPrefix: "/media"})
	require.NoError(t, err)
	images := media.NewProcessor(store, media.Config{})

	tokens, err := jwt.NewManager("test-secret", time.Hour, "yatube")
	require.NoError(t, err)
	auth := middleware.NewAuthMiddleware(tokens, middleware.SessionConfig{})

	m := metrics.New()
	events := service.NewEventPublisher(nil, m.EventPublished)
	h := NewHandler(
		service.NewPostService(repos, images, events, 0),
		service.NewGroupService(repos.Groups),
		service.NewFollowService(repos.Users, repos.Follows, events),
		service.NewUserService(repos.Users, images, tokens, 4),
		auth,
		images,
	)

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	pages := cache.NewMemoryPageCacheWithClock(clock.Now)
	indexCache := cache.Page(pages, cache.PageOptions{
		Prefix:  "index_page",
		TTL:     20 * time.Second,
		OnEvent: m.CacheEvent,
	})

	router := NewRouter(h, RouterOptions{
		Logger:     zerolog.Nop(),
		Metrics:    m,
		IndexCache: indexCache,
		MediaRoot:  mediaDir,
		MediaURL:   "/media",
	})

	return &testEnv{
		t:       t,
		db:      db,
		repos:   repos,
		router:  router,
		tokens:  tokens,
		clock:   clock,
		metrics: m,
	}
}

func (e *testEnv) do(method, path string, body io.Reader, contentType string, user *domain.User) *httptest.ResponseRecorder {
	e.t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if user != nil {
		token, _, err := e.tokens.GenerateToken(user.ID, user.Username)
		require.NoError(e.t, err)
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string, user *domain.User) *httptest.ResponseRecorder {
	return e.do(http.MethodGet, path, nil, "", user)
}

func (e *testEnv) post(path string, values url.Values, user *domain.User) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, path, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", user)
}

type envelope[T any] struct {
	Success bool                `json:"success"`
	Data    T                   `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func postIDs(page PostPageResponse) []uint {
	ids := make([]uint, len(page.ObjectList))
	for i, p := range page.ObjectList {
		ids[i] = p.ID
	}
	return ids
}

func TestStaticPages(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/about/author/", "/about/tech/", "/health"} {
		w := e.get(path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestAnonymousRedirectedToLogin(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "Pasha")
	post := testutil.CreatePost(t, e.db, leo, nil, "text", time.Time{})
	id := strconv.FormatUint(uint64(post.ID), 10)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/new/"},
		{http.MethodPost, "/new/"},
		{http.MethodGet, "/follow/"},
		{http.MethodGet, "/Pasha/" + id + "/edit/"},
		{http.MethodPost, "/Pasha/" + id + "/edit/"},
		{http.MethodPost, "/Pasha/" + id + "/comment/"},
		{http.MethodPost, "/Pasha/follow/"},
		{http.MethodPost, "/Pasha/unfollow/"},
	}
	for _, tc := range cases {
		w := e.do(tc.method, tc.path, nil, "", nil)
		assert.Equal(t, http.StatusFound, w.Code, tc.path)
		assert.Equal(t, "/auth/login/?next="+tc.path, w.Header().Get("Location"), tc.path)
	}
}

func TestNotFound(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	testutil.CreatePost(t, e.db, leo, nil, "text", time.Time{})

	for _, path := range []string{"/group/missing/", "/ghost/", "/leo/999/", "/leo/abc/", "/a/b/c/d/"} {
		w := e.get(path, nil)
		require.Equal(t, http.StatusNotFound, w.Code, path)

		body := decode[map[string]string](t, w)
		assert.False(t, body.Success)
		assert.Equal(t, path, body.Data["path"])
	}

	reader := testutil.CreateUser(t, e.db, "reader")
	w := e.post("/ghost/follow/", nil, reader)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")

	w := e.get("/leo/1/comment/", leo)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestPaginationAcrossFeeds(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	books := testutil.CreateGroup(t, e.db, "Books", "books")
	testutil.CreatePosts(t, e.db, leo, books, 12)

	for _, path := range []string{"/", "/group/books/", "/leo/"} {
		first := decode[FeedResponse](t, e.get(path, nil))
		assert.Len(t, first.Data.Page.ObjectList, 10, path)
		assert.Equal(t, 2, first.Data.Page.NumPages, path)

		second := decode[FeedResponse](t, e.get(path+"?page=2", nil))
		assert.Len(t, second.Data.Page.ObjectList, 2, path)
	}

	profile := decode[ProfileResponse](t, e.get("/leo/", nil))
	assert.Equal(t, int64(12), profile.Data.PostsCount)
	assert.Equal(t, "leo", profile.Data.Author.Username)
}

func TestGroupPostPlacement(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	books := testutil.CreateGroup(t, e.db, "Books", "books")
	testutil.CreateGroup(t, e.db, "Music", "music")

	w := e.post("/new/", url.Values{"text": {"about books"}, "group": {strconv.FormatUint(uint64(books.ID), 10)}}, leo)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/", w.Header().Get("Location"))

	index := decode[FeedResponse](t, e.get("/", nil))
	require.Len(t, index.Data.Page.ObjectList, 1)
	post := index.Data.Page.ObjectList[0]
	require.NotNil(t, post.Group)
	assert.Equal(t, "books", post.Group.Slug)

	group := decode[GroupFeedResponse](t, e.get("/group/books/", nil))
	assert.Equal(t, []uint{post.ID}, postIDs(group.Data.Page))
	assert.Equal(t, "Books", group.Data.Group.Title)

	other := decode[GroupFeedResponse](t, e.get("/group/music/", nil))
	assert.Empty(t, other.Data.Page.ObjectList)
}

func TestIndexCachedForTwentySeconds(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	testutil.CreatePost(t, e.db, leo, nil, "first", time.Time{})

	before := e.get("/", nil)
	require.Equal(t, http.StatusOK, before.Code)
	assert.Equal(t, "MISS", before.Header().Get(cache.HeaderCache))

	w := e.post("/new/", url.Values{"text": {"second"}}, leo)
	require.Equal(t, http.StatusFound, w.Code)

	e.clock.Advance(19 * time.Second)
	cached := e.get("/", nil)
	assert.Equal(t, "HIT", cached.Header().Get(cache.HeaderCache))
	assert.Equal(t, before.Body.String(), cached.Body.String())

	// Other pages are keyed separately.
	fresh := decode[FeedResponse](t, e.get("/?page=1", nil))
	assert.Len(t, fresh.Data.Page.ObjectList, 2)

	e.clock.Advance(2 * time.Second)
	after := e.get("/", nil)
	assert.Equal(t, "MISS", after.Header().Get(cache.HeaderCache))
	assert.NotEqual(t, before.Body.String(), after.Body.String())
	assert.Len(t, decode[FeedResponse](t, after).Data.Page.ObjectList, 2)
}

func TestNewPostForm(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	books := testutil.CreateGroup(t, e.db, "Books", "books")

	body := decode[domain.FormDescriptor](t, e.get("/new/", leo))
	assert.Equal(t, "/new/", body.Data.Action)
	assert.False(t, body.Data.IsEdit)
	require.Len(t, body.Data.Fields, 3)
	assert.Equal(t, []domain.FormChoice{{Value: books.ID, Label: "Books"}}, body.Data.Fields[1].Choices)
}

func TestNewPostValidation(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")

	w := e.post("/new/", url.Values{"text": {"  "}, "group": {"77"}}, leo)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode[any](t, w)
	require.NotNil(t, body.Error)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, domain.MsgRequired, body.Error.Fields["text"])
	assert.Equal(t, domain.MsgInvalidChoice, body.Error.Fields["group"])
}

func multipartPost(t *testing.T, text string, filename string, content []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", text))
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestNewPostWithImage(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")

	body, contentType := multipartPost(t, "with a picture", "small.gif", smallGIF)
	w := e.do(http.MethodPost, "/new/", body, contentType, leo)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	profile := decode[ProfileResponse](t, e.get("/leo/", nil))
	require.Len(t, profile.Data.Page.ObjectList, 1)
	post := profile.Data.Page.ObjectList[0]
	assert.True(t, strings.HasPrefix(post.Image, "/media/posts/"), post.Image)
	assert.True(t, strings.HasPrefix(post.Thumbnail, "/media/posts/thumbs/"), post.Thumbnail)

	img := e.get(post.Image, nil)
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, smallGIF, img.Body.Bytes())

	bad, badType := multipartPost(t, "not a picture", "notes.txt", []byte("plain text"))
	w = e.do(http.MethodPost, "/new/", bad, badType, leo)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.MsgInvalidImage, decode[any](t, w).Error.Fields["image"])
}

func TestEditPost(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	mallory := testutil.CreateUser(t, e.db, "mallory")
	post := testutil.CreatePost(t, e.db, leo, nil, "original", time.Time{})
	id := strconv.FormatUint(uint64(post.ID), 10)
	view := "/leo/" + id + "/"

	w := e.get(view+"edit/", mallory)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, view, w.Header().Get("Location"))

	w = e.post(view+"edit/", url.Values{"text": {"hijacked"}}, mallory)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, view, w.Header().Get("Location"))

	form := decode[domain.FormDescriptor](t, e.get(view+"edit/", leo))
	assert.True(t, form.Data.IsEdit)
	assert.Equal(t, "original", form.Data.Fields[0].Value)

	w = e.post(view+"edit/", url.Values{"text": {"edited"}}, leo)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, view, w.Header().Get("Location"))

	got := decode[PostViewResponse](t, e.get(view, leo))
	assert.Equal(t, "edited", got.Data.Post.Text)
	assert.True(t, got.Data.CanEdit)
	assert.True(t, post.PubDate.Equal(got.Data.Post.PubDate))

	w = e.post("/mallory/"+id+"/edit/", url.Values{"text": {"x"}}, mallory)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditPostMalformedGroup(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	mallory := testutil.CreateUser(t, e.db, "mallory")
	post := testutil.CreatePost(t, e.db, leo, nil, "original", time.Time{})
	view := "/leo/" + strconv.FormatUint(uint64(post.ID), 10) + "/"

	// Authorship is settled before the form is read.
	w := e.post(view+"edit/", url.Values{"text": {"x"}, "group": {"abc"}}, mallory)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, view, w.Header().Get("Location"))

	w = e.post(view+"edit/", url.Values{"text": {"x"}, "group": {"abc"}}, leo)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[any](t, w)
	require.NotNil(t, body.Error)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, domain.MsgInvalidChoice, body.Error.Fields["group"])

	w = e.post("/new/", url.Values{"text": {"x"}, "group": {"-1"}}, leo)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.MsgInvalidChoice, decode[any](t, w).Error.Fields["group"])

	got := decode[PostViewResponse](t, e.get(view, leo))
	assert.Equal(t, "original", got.Data.Post.Text)
}

func TestDeletedAccountSessionSentToLogin(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	ghost := testutil.CreateUser(t, e.db, "ghost")
	post := testutil.CreatePost(t, e.db, leo, nil, "post", time.Time{})
	view := "/leo/" + strconv.FormatUint(uint64(post.ID), 10) + "/"

	_, err := e.repos.Users.Delete(context.Background(), ghost.ID)
	require.NoError(t, err)

	cases := []struct {
		path   string
		values url.Values
	}{
		{"/new/", url.Values{"text": {"still here"}}},
		{view + "comment/", url.Values{"text": {"hello"}}},
		{"/leo/follow/", nil},
		{"/leo/unfollow/", nil},
	}
	for _, tc := range cases {
		w := e.post(tc.path, tc.values, ghost)
		assert.Equal(t, http.StatusFound, w.Code, tc.path)
		assert.Equal(t, "/auth/login/?next="+tc.path, w.Header().Get("Location"), tc.path)
		assert.Contains(t, w.Header().Get("Set-Cookie"), "sessionid=;", tc.path)
	}

	var count int64
	require.NoError(t, e.db.Model(&domain.PostModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAddComment(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	reader := testutil.CreateUser(t, e.db, "reader")
	post := testutil.CreatePost(t, e.db, leo, nil, "post", time.Time{})
	view := "/leo/" + strconv.FormatUint(uint64(post.ID), 10) + "/"

	anon := decode[PostViewResponse](t, e.get(view, nil))
	assert.Nil(t, anon.Data.CommentForm)

	w := e.post(view+"comment/", url.Values{"text": {"great post"}}, reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, view, w.Header().Get("Location"))

	w = e.post(view+"comment/", url.Values{"text": {""}}, reader)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got := decode[PostViewResponse](t, e.get(view, reader))
	require.Len(t, got.Data.Comments, 1)
	assert.Equal(t, "great post", got.Data.Comments[0].Text)
	assert.Equal(t, "reader", got.Data.Comments[0].Author.Username)
	assert.Equal(t, int64(1), got.Data.PostsCount)
	require.NotNil(t, got.Data.CommentForm)
	assert.Equal(t, view+"comment/", got.Data.CommentForm.Action)
	assert.False(t, got.Data.CanEdit)
}

func TestFollowFlow(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	reader := testutil.CreateUser(t, e.db, "reader")
	stranger := testutil.CreateUser(t, e.db, "stranger")

	countBefore, err := e.repos.Follows.Count(t.Context())
	require.NoError(t, err)

	w := e.post("/leo/follow/", nil, reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/leo/", w.Header().Get("Location"))

	// Self-follow is ignored.
	w = e.post("/leo/follow/", nil, leo)
	assert.Equal(t, http.StatusFound, w.Code)

	profile := decode[ProfileResponse](t, e.get("/leo/", reader))
	assert.True(t, profile.Data.Following)
	assert.Equal(t, int64(1), profile.Data.FollowersCount)

	w = e.post("/new/", url.Values{"text": {"for my followers"}}, leo)
	require.Equal(t, http.StatusFound, w.Code)

	followed := decode[FeedResponse](t, e.get("/follow/", reader))
	require.Len(t, followed.Data.Page.ObjectList, 1)
	assert.Equal(t, "for my followers", followed.Data.Page.ObjectList[0].Text)

	notFollowed := decode[FeedResponse](t, e.get("/follow/", stranger))
	assert.Empty(t, notFollowed.Data.Page.ObjectList)

	w = e.post("/leo/unfollow/", nil, reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/leo/", w.Header().Get("Location"))

	w = e.post("/leo/unfollow/", nil, reader)
	assert.Equal(t, http.StatusNotFound, w.Code)

	countAfter, err := e.repos.Follows.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, countBefore, countAfter)
}

func TestSignupLoginLogout(t *testing.T) {
	e := newTestEnv(t)

	w := e.post("/auth/signup/", url.Values{"username": {"leo"}, "password": {"war-and-peace"}}, nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/auth/login/", w.Header().Get("Location"))

	w = e.post("/auth/signup/", url.Values{"username": {"leo"}, "password": {"war-and-peace"}}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.MsgUsernameTaken, decode[any](t, w).Error.Fields["username"])

	w = e.post("/auth/login/", url.Values{"username": {"leo"}, "password": {"wrong-password"}}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.MsgBadLogin, decode[any](t, w).Error.Fields["__all__"])

	w = e.post("/auth/login/", url.Values{"username": {"leo"}, "password": {"war-and-peace"}, "next": {"/new/"}}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/new/", w.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "sessionid" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/new/", nil)
	req.AddCookie(session)
	form := httptest.NewRecorder()
	e.router.ServeHTTP(form, req)
	assert.Equal(t, http.StatusOK, form.Code)

	w = e.post("/auth/login/", url.Values{"username": {"leo"}, "password": {"war-and-peace"}, "next": {"https://evil.example/"}}, nil)
	assert.Equal(t, "/", w.Header().Get("Location"))

	login := decode[domain.FormDescriptor](t, e.get("/auth/login/?next=/follow/", nil))
	assert.Equal(t, "/follow/", login.Data.Fields[len(login.Data.Fields)-1].Value)

	w = e.get("/auth/logout/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "sessionid=;")
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	testutil.CreateUser(t, e.db, "leo")

	e.get("/", nil)
	e.get("/", nil)
	e.get("/leo/", nil)

	w := e.get("/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := w.Body.String()
	assert.Contains(t, out, `http_requests_total{method="GET",path="/:username/",status="200"} 1`)
	assert.Contains(t, out, `page_cache_events_total{result="hit"} 1`)
	assert.Contains(t, out, `page_cache_events_total{result="miss"} 1`)
}
