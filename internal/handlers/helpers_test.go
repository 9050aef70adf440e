package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"inkwell/internal/db"
	"inkwell/internal/db/testdb"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const testPassword = "hunter2-secret"

// testClock lets tests move the page cache window forward without sleeping.
type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time {
	return c.current
}

func (c *testClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// testTemplates registers string stubs for every view so handler output can
// be asserted without the real HTML tree.
func testTemplates() multitemplate.Renderer {
	r := multitemplate.NewRenderer()
	r.AddFromString("post/list.html",
		`{{range .Posts}}{{.Text}}|{{end}}page={{.PageInfo.Page}}/{{.PageInfo.TotalPages}}`)
	r.AddFromString("post/profile.html",
		`profile:{{.Author.Username}};following={{.Following}};{{range .Posts}}{{.Text}}|{{end}}page={{.PageInfo.Page}}/{{.PageInfo.TotalPages}}`)
	r.AddFromString("post/detail.html",
		`post:{{.Post.Text}};comments:{{range .Comments}}{{.Text}}|{{end}}`)
	r.AddFromString("post/form.html",
		`form:{{.Title}}{{if .Error}};error={{.Error}}{{end}}`)
	r.AddFromString("auth/login.html",
		`login{{if .Error}};error={{.Error}}{{end}}`)
	r.AddFromString("auth/register.html",
		`register{{if .Error}};error={{.Error}}{{end}}`)
	r.AddFromString("error.html",
		`error:{{.Error}}`)
	return r
}

// newTestServer wires the real route table onto a fresh in-memory database.
func newTestServer(t *testing.T, clock *testClock) (*gin.Engine, *services.PageCache) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db.DB = testdb.Open(t)

	feed := services.NewFeedService(db.DB)
	follows := services.NewFollowService(db.DB)
	cache := services.NewPageCache(services.HomeCacheTTL, clock.now)

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("inkwell_session", store))
	r.HTMLRender = testTemplates()
	r.Use(middleware.LoadUser())

	registerTestRoutes(r, feed, follows, cache)

	return r, cache
}

// registerTestRoutes mirrors the production route table.
func registerTestRoutes(r *gin.Engine, feed *services.FeedService, follows *services.FollowService, cache *services.PageCache) {
	authHandler := NewAuthHandler()
	postHandler := NewPostHandler(feed, follows, cache)
	followHandler := NewFollowHandler(feed, follows)

	r.GET("/", postHandler.Index)
	r.GET("/group/:slug", postHandler.GroupList)
	r.GET("/profile/:username", postHandler.Profile)
	r.GET("/posts/:id", postHandler.Detail)

	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/posts/create", postHandler.ShowCreate)
		authorized.POST("/posts/create", postHandler.Create)
		authorized.GET("/posts/:id/edit", postHandler.ShowEdit)
		authorized.POST("/posts/:id/edit", postHandler.Update)
		authorized.POST("/posts/:id/comment", postHandler.CreateComment)

		authorized.GET("/follow", followHandler.FollowIndex)
		authorized.GET("/profile/:username/follow", followHandler.Follow)
		authorized.GET("/profile/:username/unfollow", followHandler.Unfollow)
	}

	r.NoRoute(func(c *gin.Context) {
		RenderError(c, http.StatusNotFound, "Page not found")
	})
}

func createUser(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

func createPost(t *testing.T, author *models.User, text string) *models.Post {
	t.Helper()
	post := models.Post{AuthorID: author.ID, Text: text}
	if err := db.DB.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return &post
}

// login runs the real login handler and returns the session cookies.
func login(t *testing.T, r *gin.Engine, username string) []*http.Cookie {
	t.Helper()
	form := url.Values{"username": {username}, "password": {testPassword}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusFound {
		t.Fatalf("login as %s: status %d, body %s", username, w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func doGet(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doPostForm(r *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
