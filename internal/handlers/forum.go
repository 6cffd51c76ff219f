package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/farmconnect-dev/farmconnect/db"
	"github.com/farmconnect-dev/farmconnect/internal/auth"
	"github.com/farmconnect-dev/farmconnect/internal/models"
	"github.com/farmconnect-dev/farmconnect/internal/relay"
	"github.com/farmconnect-dev/farmconnect/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreatePostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

type PostRow struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	UserID       uint      `json:"user_id"`
	Username     string    `json:"username"`
	CommentCount int64     `json:"comment_count"`
	LikeCount    int64     `json:"like_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type CommentRow struct {
	ID         uint      `json:"id"`
	PostID     uint      `json:"post_id"`
	ParentID   *uint     `json:"parent_id"`
	Content    string    `json:"content"`
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username"`
	ReplyCount int64     `json:"reply_count"`
	LikeCount  int64     `json:"like_count"`
	CreatedAt  time.Time `json:"created_at"`
}

func CreatePost(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreatePostRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
		return
	}

	post := models.ForumPost{
		Title:   req.Title,
		Content: req.Content,
		UserID:  currentUser.ID,
	}

	if err := db.DB.Create(&post).Error; err != nil {
		log.Printf("Failed to create forum post: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating post"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Post created!", "post_id": post.ID})
}

func ListPosts(ctx *gin.Context) {
	page, limit := utils.GetPagination(ctx)
	search := strings.TrimSpace(ctx.Query("search"))

	query := db.DB.Table("forum_posts").
		Select("forum_posts.id, forum_posts.title, forum_posts.content, forum_posts.user_id, forum_posts.created_at, users.username, " +
			"(SELECT COUNT(*) FROM forum_comments WHERE forum_comments.post_id = forum_posts.id) AS comment_count, " +
			"(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = forum_posts.id) AS like_count").
		Joins("JOIN users ON users.id = forum_posts.user_id")

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(forum_posts.title) LIKE ? OR LOWER(forum_posts.content) LIKE ?", pattern, pattern)
	}

	var rows []PostRow

	if err := query.
		Order("forum_posts.created_at DESC, forum_posts.id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&rows).Error; err != nil {
		log.Printf("Failed to list forum posts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if rows == nil {
		rows = []PostRow{}
	}

	ctx.JSON(http.StatusOK, rows)
}

func AddComment(hub *relay.Hub) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		currentUser, err := utils.GetCurrentUser(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		postID, err := utils.GetIDParam(ctx, "post_id")

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var req CreateCommentRequest

		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
			return
		}

		var post models.ForumPost

		if err := db.DB.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			} else {
				log.Printf("Failed to fetch post %d: %v", postID, err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		// A reply must target a top-level comment on the same post.
		if req.ParentID != nil {
			var parent models.ForumComment

			if err := db.DB.First(&parent, *req.ParentID).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Parent comment not found"})
				return
			}

			if parent.PostID != postID || parent.ParentID != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parent comment"})
				return
			}
		}

		comment := models.ForumComment{
			PostID:   postID,
			UserID:   currentUser.ID,
			ParentID: req.ParentID,
			Content:  req.Content,
		}

		if err := db.DB.Create(&comment).Error; err != nil {
			log.Printf("Failed to create comment: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding comment"})
			return
		}

		row := CommentRow{
			ID:        comment.ID,
			PostID:    comment.PostID,
			ParentID:  comment.ParentID,
			Content:   comment.Content,
			UserID:    comment.UserID,
			Username:  currentUser.Username,
			CreatedAt: comment.CreatedAt,
		}

		hub.Broadcast("newComment", row)

		ctx.JSON(http.StatusCreated, gin.H{"message": "Comment added!", "comment": row})
	}
}

func ListComments(ctx *gin.Context) {
	postID, err := utils.GetIDParam(ctx, "post_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rows []CommentRow

	err = db.DB.Table("forum_comments").
		Select("forum_comments.id, forum_comments.post_id, forum_comments.parent_id, forum_comments.content, forum_comments.user_id, forum_comments.created_at, users.username, "+
			"(SELECT COUNT(*) FROM forum_comments replies WHERE replies.parent_id = forum_comments.id) AS reply_count, "+
			"(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = forum_comments.id) AS like_count").
		Joins("JOIN users ON users.id = forum_comments.user_id").
		Where("forum_comments.post_id = ?", postID).
		Order("forum_comments.created_at ASC").
		Scan(&rows).Error

	if err != nil {
		log.Printf("Failed to list comments for post %d: %v", postID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if rows == nil {
		rows = []CommentRow{}
	}

	ctx.JSON(http.StatusOK, rows)
}

// LikePost records a (user, post) like. Likes form a set: liking the same
// post twice leaves the count unchanged.
func LikePost(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	postID, err := utils.GetIDParam(ctx, "post_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.ForumPost

	if err := db.DB.First(&post, postID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	like := models.PostLike{PostID: postID, UserID: currentUser.ID}

	if err := db.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
		log.Printf("Failed to like post %d: %v", postID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var likes int64

	if err := db.DB.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&likes).Error; err != nil {
		log.Printf("Failed to count likes for post %d: %v", postID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"likes": likes})
}

func LikeComment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, err := utils.GetIDParam(ctx, "comment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.ForumComment

	if err := db.DB.First(&comment, commentID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	like := models.CommentLike{CommentID: commentID, UserID: currentUser.ID}

	if err := db.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
		log.Printf("Failed to like comment %d: %v", commentID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var likes int64

	if err := db.DB.Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&likes).Error; err != nil {
		log.Printf("Failed to count likes for comment %d: %v", commentID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"likes": likes})
}

func DeletePost(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	postID, err := utils.GetIDParam(ctx, "post_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.ForumPost

	if err := db.DB.First(&post, postID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if !auth.CanDeleteForumContent(currentUser.ID, post.UserID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		return
	}

	if err := db.DB.Delete(&post).Error; err != nil {
		log.Printf("Failed to delete post %d: %v", postID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func DeleteComment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	commentID, err := utils.GetIDParam(ctx, "comment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.ForumComment

	if err := db.DB.First(&comment, commentID).Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if !auth.CanDeleteForumContent(currentUser.ID, comment.UserID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		return
	}

	if err := db.DB.Delete(&comment).Error; err != nil {
		log.Printf("Failed to delete comment %d: %v", commentID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
