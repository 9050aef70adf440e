package handlers

import (
	"errors"
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FollowHandler struct {
	feed    *services.FeedService
	follows *services.FollowService
}

func NewFollowHandler(feed *services.FeedService, follows *services.FollowService) *FollowHandler {
	return &FollowHandler{
		feed:    feed,
		follows: follows,
	}
}

// FollowIndex - posts by every author the viewer follows. No follows is an
// empty page, not an error.
func (h *FollowHandler) FollowIndex(c *gin.Context) {
	user := middleware.CurrentUser(c)

	posts, err := h.feed.Following(user.ID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the feed")
		return
	}

	page := utils.StringToInt(c.Query("page"))
	pagePosts, pageInfo := utils.Paginate(posts, utils.ElementsPerPage, page)
	h.feed.FillCommentCounts(pagePosts)

	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Title":    "Authors you follow",
		"Posts":    pagePosts,
		"PageInfo": pageInfo,
		"Active":   "follow",
	})
}

// Follow - /profile/:username/follow
func (h *FollowHandler) Follow(c *gin.Context) {
	user := middleware.CurrentUser(c)
	username := c.Param("username")

	if err := h.follows.Follow(user, username); err != nil {
		switch {
		case errors.Is(err, services.ErrSelfFollow):
			RenderError(c, http.StatusBadRequest, "You cannot follow yourself")
		case errors.Is(err, gorm.ErrRecordNotFound):
			RenderError(c, http.StatusNotFound, "User not found")
		default:
			RenderError(c, http.StatusInternalServerError, "Could not follow")
		}
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Unfollow - /profile/:username/unfollow. A missing edge is a 404, matching
// the page only offering unfollow while the edge exists.
func (h *FollowHandler) Unfollow(c *gin.Context) {
	user := middleware.CurrentUser(c)
	username := c.Param("username")

	if err := h.follows.Unfollow(user, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RenderError(c, http.StatusNotFound, "You are not following this user")
			return
		}
		RenderError(c, http.StatusInternalServerError, "Could not unfollow")
		return
	}

	c.Redirect(http.StatusFound, "/")
}
