package services

import (
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// feedOrder is newest first; equal timestamps fall back to insertion order
// so listings stay stable between requests.
const feedOrder = "created_at DESC, id ASC"

// FeedService builds the full ordered post list for each viewing context.
// All queries are read-only; pagination happens at the handler.
type FeedService struct {
	db *gorm.DB
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

// Home returns every post, unfiltered.
func (s *FeedService) Home() ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Preload("Author").Preload("Group").
		Order(feedOrder).
		Find(&posts).Error
	return posts, err
}

// Group returns the group with the given slug and its posts.
// Returns gorm.ErrRecordNotFound when no group has that slug.
func (s *FeedService) Group(slug string) (*models.Group, []models.Post, error) {
	var group models.Group
	if err := s.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, nil, err
	}

	var posts []models.Post
	err := s.db.Preload("Author").Preload("Group").
		Where("group_id = ?", group.ID).
		Order(feedOrder).
		Find(&posts).Error
	return &group, posts, err
}

// Profile returns the user with the given username and the posts they
// authored. Returns gorm.ErrRecordNotFound when the user does not exist.
func (s *FeedService) Profile(username string) (*models.User, []models.Post, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, nil, err
	}

	var posts []models.Post
	err := s.db.Preload("Author").Preload("Group").
		Where("author_id = ?", user.ID).
		Order(feedOrder).
		Find(&posts).Error
	return &user, posts, err
}

// Following returns posts by every author the user follows. No follows, or
// followed authors without posts, yields an empty list rather than an error.
func (s *FeedService) Following(userID uint) ([]models.Post, error) {
	followed := s.db.Model(&models.Follow{}).
		Select("author_id").
		Where("follower_id = ?", userID)

	var posts []models.Post
	err := s.db.Preload("Author").Preload("Group").
		Where("author_id IN (?)", followed).
		Order(feedOrder).
		Find(&posts).Error
	return posts, err
}

// FillCommentCounts batch-loads comment counts for a page of posts.
func (s *FeedService) FillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	s.db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int, len(results))
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}
