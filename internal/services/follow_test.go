package services

import (
	"errors"
	"fmt"
	"testing"

	"inkwell/internal/db/testdb"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

func createUser(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "x",
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

func createPost(t *testing.T, gdb *gorm.DB, author *models.User, text string) *models.Post {
	t.Helper()
	post := models.Post{AuthorID: author.ID, Text: text}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return &post
}

func TestFollowSelfRejected(t *testing.T) {
	gdb := testdb.Open(t)
	follows := NewFollowService(gdb)

	alice := createUser(t, gdb, "alice")

	if err := follows.Follow(alice, "alice"); !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow, got %v", err)
	}

	var count int64
	gdb.Model(&models.Follow{}).Count(&count)
	if count != 0 {
		t.Fatalf("self-follow must not create an edge, found %d", count)
	}
}

func TestFollowUnknownUser(t *testing.T) {
	gdb := testdb.Open(t)
	follows := NewFollowService(gdb)

	alice := createUser(t, gdb, "alice")

	if err := follows.Follow(alice, "nobody"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestFollowIdempotent(t *testing.T) {
	gdb := testdb.Open(t)
	follows := NewFollowService(gdb)

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	if err := follows.Follow(alice, "bob"); err != nil {
		t.Fatalf("first follow: %v", err)
	}
	if err := follows.Follow(alice, "bob"); err != nil {
		t.Fatalf("re-follow must be a no-op, got %v", err)
	}

	var count int64
	gdb.Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", alice.ID, bob.ID).
		Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one edge, found %d", count)
	}
}

func TestFollowUnfollowLifecycle(t *testing.T) {
	gdb := testdb.Open(t)
	follows := NewFollowService(gdb)

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	if follows.IsFollowing(alice.ID, bob.ID) {
		t.Fatal("fresh users must not be following")
	}

	if err := follows.Follow(alice, "bob"); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if !follows.IsFollowing(alice.ID, bob.ID) {
		t.Fatal("IsFollowing must be true after Follow")
	}
	if follows.IsFollowing(bob.ID, alice.ID) {
		t.Fatal("the edge is directed, reverse must be false")
	}

	if err := follows.Unfollow(alice, "bob"); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if follows.IsFollowing(alice.ID, bob.ID) {
		t.Fatal("IsFollowing must be false after Unfollow")
	}
}

func TestUnfollowMissingEdge(t *testing.T) {
	gdb := testdb.Open(t)
	follows := NewFollowService(gdb)

	alice := createUser(t, gdb, "alice")
	createUser(t, gdb, "bob")

	if err := follows.Unfollow(alice, "bob"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for a missing edge, got %v", err)
	}
}

func TestIsFollowingAnonymous(t *testing.T) {
	gdb := testdb.Open(t)
	follows := NewFollowService(gdb)

	bob := createUser(t, gdb, "bob")

	// Zero follower id stands for an unauthenticated viewer.
	if follows.IsFollowing(0, bob.ID) {
		t.Fatal("anonymous viewers follow nobody")
	}
}

func TestFollowingFeedVisibility(t *testing.T) {
	gdb := testdb.Open(t)
	follows := NewFollowService(gdb)
	feed := NewFeedService(gdb)

	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")
	carol := createUser(t, gdb, "carol")

	if err := follows.Follow(alice, "bob"); err != nil {
		t.Fatalf("follow: %v", err)
	}
	post := createPost(t, gdb, bob, "bob writes")

	alicesFeed, err := feed.Following(alice.ID)
	if err != nil {
		t.Fatalf("following feed: %v", err)
	}
	if len(alicesFeed) != 1 || alicesFeed[0].ID != post.ID {
		t.Fatalf("alice must see bob's post, got %d posts", len(alicesFeed))
	}

	carolsFeed, err := feed.Following(carol.ID)
	if err != nil {
		t.Fatalf("following feed: %v", err)
	}
	if len(carolsFeed) != 0 {
		t.Fatalf("carol follows nobody and must see nothing, got %d posts", len(carolsFeed))
	}
}
