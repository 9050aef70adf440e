package services

import (
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// ErrSelfFollow is returned when a user tries to follow themselves.
var ErrSelfFollow = errors.New("cannot follow yourself")

// FollowService maintains the directed follow graph between users.
type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Follow creates an edge from follower to the named author. Re-following is
// a no-op; following yourself fails with ErrSelfFollow; an unknown username
// fails with gorm.ErrRecordNotFound.
func (s *FollowService) Follow(follower *models.User, username string) error {
	if follower.Username == username {
		return ErrSelfFollow
	}

	var author models.User
	if err := s.db.Where("username = ?", username).First(&author).Error; err != nil {
		return err
	}

	edge := models.Follow{FollowerID: follower.ID, AuthorID: author.ID}
	return s.db.
		Where("follower_id = ? AND author_id = ?", follower.ID, author.ID).
		FirstOrCreate(&edge).Error
}

// Unfollow removes the edge from follower to the named author. A missing
// edge (or unknown username) fails with gorm.ErrRecordNotFound; this mirrors
// the follow form only being offered while the edge exists.
func (s *FollowService) Unfollow(follower *models.User, username string) error {
	var author models.User
	if err := s.db.Where("username = ?", username).First(&author).Error; err != nil {
		return err
	}

	var edge models.Follow
	if err := s.db.
		Where("follower_id = ? AND author_id = ?", follower.ID, author.ID).
		First(&edge).Error; err != nil {
		return err
	}

	return s.db.Delete(&edge).Error
}

// IsFollowing reports whether the edge exists. Safe for anonymous viewers:
// a zero followerID is never following anyone.
func (s *FollowService) IsFollowing(followerID, authorID uint) bool {
	if followerID == 0 {
		return false
	}

	var count int64
	s.db.Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count)
	return count > 0
}
