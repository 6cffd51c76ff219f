package models

type ForumPost struct {
	BaseModel

	Title   string `gorm:"not null"`
	Content string `gorm:"not null"`
	UserID  uint   `gorm:"not null;index"`

	// Relationships
	User     User           `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments []ForumComment `gorm:"foreignKey:PostID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Likes    []PostLike     `gorm:"foreignKey:PostID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

type ForumComment struct {
	BaseModel

	PostID   uint   `gorm:"not null;index"`
	UserID   uint   `gorm:"not null;index"`
	ParentID *uint  `gorm:"index"` // one level of threading
	Content  string `gorm:"not null"`

	// Relationships
	User  User          `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Post  ForumPost     `gorm:"foreignKey:PostID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Likes []CommentLike `gorm:"foreignKey:CommentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// PostLike and CommentLike model likes as a set of (user, target) pairs
// so that repeated likes from the same account are no-ops.
type PostLike struct {
	BaseModel

	PostID uint `gorm:"not null;uniqueIndex:idx_post_like"`
	UserID uint `gorm:"not null;uniqueIndex:idx_post_like"`
}

type CommentLike struct {
	BaseModel

	CommentID uint `gorm:"not null;uniqueIndex:idx_comment_like"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_comment_like"`
}
