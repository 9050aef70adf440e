package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"inkwell/internal/db"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct {
	feed    *services.FeedService
	follows *services.FollowService
	cache   *services.PageCache
}

func NewPostHandler(feed *services.FeedService, follows *services.FollowService, cache *services.PageCache) *PostHandler {
	return &PostHandler{
		feed:    feed,
		follows: follows,
		cache:   cache,
	}
}

// Index - home feed. The whole rendering is cached under a single fixed key
// for the cache window, so repeat visitors may see a stale listing until the
// window passes or the cache is flushed.
func (h *PostHandler) Index(c *gin.Context) {
	if cached, ok := h.cache.Get(services.HomeCacheKey); ok {
		// Copy before Render injects per-request keys into the map.
		data := gin.H{}
		for k, v := range cached {
			data[k] = v
		}
		Render(c, http.StatusOK, "post/list.html", data)
		return
	}

	posts, err := h.feed.Home()
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the feed")
		return
	}

	page := utils.StringToInt(c.Query("page"))
	pagePosts, pageInfo := utils.Paginate(posts, utils.ElementsPerPage, page)
	h.feed.FillCommentCounts(pagePosts)

	data := gin.H{
		"Title":    "Latest updates",
		"Posts":    pagePosts,
		"PageInfo": pageInfo,
		"Active":   "home",
	}
	h.cache.Set(services.HomeCacheKey, data)

	Render(c, http.StatusOK, "post/list.html", data)
}

// GroupList - posts under one group, /group/:slug
func (h *PostHandler) GroupList(c *gin.Context) {
	slug := c.Param("slug")

	group, posts, err := h.feed.Group(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RenderError(c, http.StatusNotFound, "Group not found")
			return
		}
		RenderError(c, http.StatusInternalServerError, "Could not load the group")
		return
	}

	page := utils.StringToInt(c.Query("page"))
	pagePosts, pageInfo := utils.Paginate(posts, utils.ElementsPerPage, page)
	h.feed.FillCommentCounts(pagePosts)

	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Title":    group.Title,
		"Group":    group,
		"Posts":    pagePosts,
		"PageInfo": pageInfo,
		"Active":   "group",
	})
}

// Profile - a user's posts plus the follow/unfollow affordance state.
func (h *PostHandler) Profile(c *gin.Context) {
	username := c.Param("username")

	author, posts, err := h.feed.Profile(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RenderError(c, http.StatusNotFound, "User not found")
			return
		}
		RenderError(c, http.StatusInternalServerError, "Could not load the profile")
		return
	}

	page := utils.StringToInt(c.Query("page"))
	pagePosts, pageInfo := utils.Paginate(posts, utils.ElementsPerPage, page)
	h.feed.FillCommentCounts(pagePosts)

	viewerID := uint(0)
	isSelf := false
	if viewer := middleware.CurrentUser(c); viewer != nil {
		viewerID = viewer.ID
		isSelf = viewer.ID == author.ID
	}

	Render(c, http.StatusOK, "post/profile.html", gin.H{
		"Title":     author.Username,
		"Author":    author,
		"Posts":     pagePosts,
		"PageInfo":  pageInfo,
		"Following": h.follows.IsFollowing(viewerID, author.ID),
		"IsSelf":    isSelf,
	})
}

// Detail - single post with its comments in creation order.
func (h *PostHandler) Detail(c *gin.Context) {
	postID := utils.StringToUint(c.Param("id"))

	var post models.Post
	if err := db.DB.Preload("Author").Preload("Group").First(&post, postID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}

	var comments []models.Comment
	db.DB.Preload("Author").
		Where("post_id = ?", post.ID).
		Order("created_at ASC, id ASC").
		Find(&comments)

	type renderedComment struct {
		models.Comment
		TextHTML template.HTML
	}
	rendered := make([]renderedComment, len(comments))
	for i, com := range comments {
		rendered[i] = renderedComment{
			Comment:  com,
			TextHTML: utils.RenderMarkdown(com.Text),
		}
	}

	Render(c, http.StatusOK, "post/detail.html", gin.H{
		"Title":    previewText(post.Text),
		"Post":     post,
		"PostHTML": utils.RenderMarkdown(post.Text),
		"Comments": rendered,
	})
}

// previewText keeps listing and page titles short.
func previewText(text string) string {
	runes := []rune(text)
	if len(runes) > 30 {
		return string(runes[:30])
	}
	return text
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "post/form.html", gin.H{
		"Title":         "New post",
		"Groups":        formGroups(),
		"SelectedGroup": uint(0),
	})
}

// formGroups loads the group choices for the post form select.
func formGroups() []models.Group {
	var groups []models.Group
	db.DB.Order("id ASC").Find(&groups)
	return groups
}

// selectedGroupID flattens the optional group reference for the form select.
func selectedGroupID(post *models.Post) uint {
	if post != nil && post.GroupID != nil {
		return *post.GroupID
	}
	return 0
}

func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	text := c.PostForm("text")
	if text == "" {
		Render(c, http.StatusBadRequest, "post/form.html", gin.H{
			"Title":         "New post",
			"Error":         "Text must not be empty",
			"Groups":        formGroups(),
			"SelectedGroup": uint(0),
		})
		return
	}

	post := models.Post{
		AuthorID: user.ID,
		Text:     text,
		GroupID:  groupIDFromForm(c),
	}

	// Optional image
	if file, header, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()
		result, err := services.UploadImage(file, header)
		if err != nil {
			Render(c, http.StatusBadRequest, "post/form.html", gin.H{
				"Title":         "New post",
				"Error":         "Could not store the image",
				"Groups":        formGroups(),
				"SelectedGroup": selectedGroupID(&post),
			})
			return
		}
		post.Image = result.URL
	}

	if err := db.DB.Create(&post).Error; err != nil {
		Render(c, http.StatusInternalServerError, "post/form.html", gin.H{
			"Title":         "New post",
			"Error":         "Could not save the post",
			"Groups":        formGroups(),
			"SelectedGroup": selectedGroupID(&post),
		})
		return
	}

	c.Redirect(http.StatusFound, "/profile/"+user.Username)
}

// groupIDFromForm resolves the optional group select. An empty or unknown
// value leaves the post ungrouped.
func groupIDFromForm(c *gin.Context) *uint {
	raw := c.PostForm("group_id")
	if raw == "" {
		return nil
	}

	id := utils.StringToUint(raw)
	if id == 0 {
		return nil
	}

	var group models.Group
	if err := db.DB.First(&group, id).Error; err != nil {
		return nil
	}
	return &group.ID
}

// ShowEdit - owner-only. A non-owner is not an error case: they are sent
// back to the read-only detail view.
func (h *PostHandler) ShowEdit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	postID := utils.StringToUint(c.Param("id"))

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}

	if post.AuthorID != user.ID {
		c.Redirect(http.StatusFound, postDetailPath(post.ID))
		return
	}

	Render(c, http.StatusOK, "post/form.html", gin.H{
		"Title":         "Edit post",
		"IsEdit":        true,
		"Post":          post,
		"Groups":        formGroups(),
		"SelectedGroup": selectedGroupID(&post),
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	postID := utils.StringToUint(c.Param("id"))

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}

	if post.AuthorID != user.ID {
		c.Redirect(http.StatusFound, postDetailPath(post.ID))
		return
	}

	text := c.PostForm("text")
	if text == "" {
		Render(c, http.StatusBadRequest, "post/form.html", gin.H{
			"Title":         "Edit post",
			"IsEdit":        true,
			"Error":         "Text must not be empty",
			"Post":          post,
			"Groups":        formGroups(),
			"SelectedGroup": selectedGroupID(&post),
		})
		return
	}

	post.Text = text

	// Only a submitted group_id changes the grouping; an empty value ungroups.
	if _, ok := c.GetPostForm("group_id"); ok {
		post.GroupID = groupIDFromForm(c)
	}

	if file, header, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()
		if result, err := services.UploadImage(file, header); err == nil {
			post.Image = result.URL
		}
	}

	if err := db.DB.Save(&post).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not save the post")
		return
	}

	c.Redirect(http.StatusFound, postDetailPath(post.ID))
}

// CreateComment - appends a comment and returns to the detail view. An empty
// body writes nothing and redirects the same way.
func (h *PostHandler) CreateComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	postID := utils.StringToUint(c.Param("id"))

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}

	text := c.PostForm("text")
	if text == "" {
		c.Redirect(http.StatusFound, postDetailPath(post.ID))
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		comment := models.Comment{
			PostID:   post.ID,
			AuthorID: user.ID,
			Text:     text,
		}
		return tx.Create(&comment).Error
	})
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not save the comment")
		return
	}

	c.Redirect(http.StatusFound, postDetailPath(post.ID))
}

func postDetailPath(id uint) string {
	return "/posts/" + utils.UintToString(id)
}
