package router

import (
	"net/http"

	"inkwell/internal/db"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	Register(r,
		services.NewFeedService(db.DB),
		services.NewFollowService(db.DB),
		services.NewPageCache(services.HomeCacheTTL, nil),
	)
}

// Register wires the route table onto explicitly provided services, so tests
// can inject their own database and cache clock.
func Register(r *gin.Engine, feed *services.FeedService, follows *services.FollowService, cache *services.PageCache) {
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler(feed, follows, cache)
	followHandler := handlers.NewFollowHandler(feed, follows)

	// Public routes
	r.GET("/", postHandler.Index)                    // Home feed (cached)
	r.GET("/group/:slug", postHandler.GroupList)     // Posts in one group
	r.GET("/profile/:username", postHandler.Profile) // A user's posts
	r.GET("/posts/:id", postHandler.Detail)          // Post detail + comments

	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/posts/create", postHandler.ShowCreate)
		authorized.POST("/posts/create", postHandler.Create)
		authorized.GET("/posts/:id/edit", postHandler.ShowEdit)   // Owner only
		authorized.POST("/posts/:id/edit", postHandler.Update)    // Owner only
		authorized.POST("/posts/:id/comment", postHandler.CreateComment)

		authorized.GET("/follow", followHandler.FollowIndex) // Feed of followed authors
		authorized.GET("/profile/:username/follow", followHandler.Follow)
		authorized.GET("/profile/:username/unfollow", followHandler.Unfollow)
	}

	r.NoRoute(func(c *gin.Context) {
		handlers.RenderError(c, http.StatusNotFound, "Page not found")
	})
}
