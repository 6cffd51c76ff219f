package handlers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/farmconnect-dev/farmconnect/internal/handlers"
	"github.com/farmconnect-dev/farmconnect/internal/types"
)

func TestForumPostAndCommentFlow(t *testing.T) {
	r := setupAPI(t)

	author := seedUser(t, "ramesh", types.RoleFarmer)
	replier := seedUser(t, "sita", types.RoleBuyer)

	rec := doJSON(t, r, http.MethodPost, "/api/forum/posts", handlers.CreatePostRequest{
		Title:   "Best time to sow wheat?",
		Content: "Looking for advice for the northern plains.",
	}, bearer(t, author))
	expectStatus(t, rec, http.StatusCreated)

	var created struct {
		PostID uint `json:"post_id"`
	}
	decodeBody(t, rec, &created)

	postPath := "/api/forum/posts/" + strconv.Itoa(int(created.PostID))

	// Top-level comment.
	rec = doJSON(t, r, http.MethodPost, postPath+"/comments", handlers.CreateCommentRequest{
		Content: "Early November worked well for me.",
	}, bearer(t, replier))
	expectStatus(t, rec, http.StatusCreated)

	var commented struct {
		Comment handlers.CommentRow `json:"comment"`
	}
	decodeBody(t, rec, &commented)

	topLevelID := commented.Comment.ID

	// Reply to the top-level comment.
	rec = doJSON(t, r, http.MethodPost, postPath+"/comments", handlers.CreateCommentRequest{
		Content:  "Same here.",
		ParentID: &topLevelID,
	}, bearer(t, author))
	expectStatus(t, rec, http.StatusCreated)
	decodeBody(t, rec, &commented)

	replyID := commented.Comment.ID

	// Replies only nest one level deep.
	rec = doJSON(t, r, http.MethodPost, postPath+"/comments", handlers.CreateCommentRequest{
		Content:  "Replying to a reply.",
		ParentID: &replyID,
	}, bearer(t, replier))
	expectStatus(t, rec, http.StatusBadRequest)

	// A parent from another post is rejected.
	rec = doJSON(t, r, http.MethodPost, "/api/forum/posts", handlers.CreatePostRequest{
		Title:   "Second post",
		Content: "Unrelated.",
	}, bearer(t, author))
	expectStatus(t, rec, http.StatusCreated)

	var second struct {
		PostID uint `json:"post_id"`
	}
	decodeBody(t, rec, &second)

	rec = doJSON(t, r, http.MethodPost, "/api/forum/posts/"+strconv.Itoa(int(second.PostID))+"/comments", handlers.CreateCommentRequest{
		Content:  "Cross-post reply.",
		ParentID: &topLevelID,
	}, bearer(t, replier))
	expectStatus(t, rec, http.StatusBadRequest)

	// Listing shows both comments with the reply count attached.
	rec = doRequest(t, r, http.MethodGet, postPath+"/comments", nil, "", "")
	expectStatus(t, rec, http.StatusOK)

	var comments []handlers.CommentRow
	decodeBody(t, rec, &comments)

	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].ID != topLevelID || comments[0].ReplyCount != 1 {
		t.Fatalf("unexpected top-level comment: %+v", comments[0])
	}
	if comments[0].Username != "sita" {
		t.Fatalf("expected username sita, got %q", comments[0].Username)
	}

	// Post listing aggregates comment counts.
	rec = doRequest(t, r, http.MethodGet, "/api/forum/posts", nil, "", "")
	expectStatus(t, rec, http.StatusOK)

	var posts []handlers.PostRow
	decodeBody(t, rec, &posts)

	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	for _, post := range posts {
		if post.ID == created.PostID && post.CommentCount != 2 {
			t.Fatalf("expected comment_count 2, got %d", post.CommentCount)
		}
	}

	// Missing post.
	rec = doJSON(t, r, http.MethodPost, "/api/forum/posts/99999/comments", handlers.CreateCommentRequest{
		Content: "Into the void.",
	}, bearer(t, replier))
	expectStatus(t, rec, http.StatusNotFound)
}

func TestLikePostIsIdempotent(t *testing.T) {
	r := setupAPI(t)

	author := seedUser(t, "ramesh", types.RoleFarmer)
	fan := seedUser(t, "sita", types.RoleBuyer)

	rec := doJSON(t, r, http.MethodPost, "/api/forum/posts", handlers.CreatePostRequest{
		Title:   "Drip irrigation results",
		Content: "30% less water this season.",
	}, bearer(t, author))
	expectStatus(t, rec, http.StatusCreated)

	var created struct {
		PostID uint `json:"post_id"`
	}
	decodeBody(t, rec, &created)

	likePath := "/api/forum/posts/" + strconv.Itoa(int(created.PostID)) + "/like"

	var result struct {
		Likes int64 `json:"likes"`
	}

	for i := 0; i < 3; i++ {
		rec = doJSON(t, r, http.MethodPost, likePath, nil, bearer(t, fan))
		expectStatus(t, rec, http.StatusOK)
		decodeBody(t, rec, &result)

		if result.Likes != 1 {
			t.Fatalf("expected 1 like after attempt %d, got %d", i+1, result.Likes)
		}
	}

	// A second user moves the count.
	rec = doJSON(t, r, http.MethodPost, likePath, nil, bearer(t, author))
	expectStatus(t, rec, http.StatusOK)
	decodeBody(t, rec, &result)

	if result.Likes != 2 {
		t.Fatalf("expected 2 likes, got %d", result.Likes)
	}
}

func TestLikeCommentIsIdempotent(t *testing.T) {
	r := setupAPI(t)

	author := seedUser(t, "ramesh", types.RoleFarmer)

	rec := doJSON(t, r, http.MethodPost, "/api/forum/posts", handlers.CreatePostRequest{
		Title:   "Pest control",
		Content: "Neem oil schedule.",
	}, bearer(t, author))
	expectStatus(t, rec, http.StatusCreated)

	var created struct {
		PostID uint `json:"post_id"`
	}
	decodeBody(t, rec, &created)

	rec = doJSON(t, r, http.MethodPost, "/api/forum/posts/"+strconv.Itoa(int(created.PostID))+"/comments", handlers.CreateCommentRequest{
		Content: "Weekly works best.",
	}, bearer(t, author))
	expectStatus(t, rec, http.StatusCreated)

	var commented struct {
		Comment handlers.CommentRow `json:"comment"`
	}
	decodeBody(t, rec, &commented)

	likePath := "/api/forum/comments/" + strconv.Itoa(int(commented.Comment.ID)) + "/like"

	var result struct {
		Likes int64 `json:"likes"`
	}

	for i := 0; i < 2; i++ {
		rec = doJSON(t, r, http.MethodPost, likePath, nil, bearer(t, author))
		expectStatus(t, rec, http.StatusOK)
		decodeBody(t, rec, &result)

		if result.Likes != 1 {
			t.Fatalf("expected 1 like, got %d", result.Likes)
		}
	}
}

func TestDeleteForumContentIsOwnerOnly(t *testing.T) {
	r := setupAPI(t)

	author := seedUser(t, "ramesh", types.RoleFarmer)
	other := seedUser(t, "sita", types.RoleBuyer)
	admin := seedUser(t, "admin1", types.RoleAdmin)

	rec := doJSON(t, r, http.MethodPost, "/api/forum/posts", handlers.CreatePostRequest{
		Title:   "Market prices",
		Content: "Mandis are paying more this week.",
	}, bearer(t, author))
	expectStatus(t, rec, http.StatusCreated)

	var created struct {
		PostID uint `json:"post_id"`
	}
	decodeBody(t, rec, &created)

	postPath := "/api/forum/posts/" + strconv.Itoa(int(created.PostID))

	// Neither another user nor an admin may delete someone's post.
	rec = doRequest(t, r, http.MethodDelete, postPath, nil, "", bearer(t, other))
	expectStatus(t, rec, http.StatusForbidden)

	rec = doRequest(t, r, http.MethodDelete, postPath, nil, "", bearer(t, admin))
	expectStatus(t, rec, http.StatusForbidden)

	rec = doRequest(t, r, http.MethodDelete, postPath, nil, "", bearer(t, author))
	expectStatus(t, rec, http.StatusNoContent)

	rec = doRequest(t, r, http.MethodDelete, postPath, nil, "", bearer(t, author))
	expectStatus(t, rec, http.StatusNotFound)
}
