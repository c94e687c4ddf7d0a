package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleOwner = "owner"
)

// Account covers both customers and restaurant owners, distinguished by Role.
// RefreshTokenHash holds the sha256 of the single active refresh token;
// overwriting it is the only revocation mechanism.
type Account struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"            json:"id"`
	Name             string    `gorm:"not null"                            json:"name"`
	Email            string    `gorm:"uniqueIndex:idx_email_role;not null" json:"email"`
	Role             string    `gorm:"uniqueIndex:idx_email_role;not null" json:"role"`
	PasswordHash     string    `gorm:"not null"                            json:"-"`
	AvatarURL        string    `json:"avatar_url"`
	Address          string    `json:"address"`
	RefreshTokenHash string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Product struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name      string    `gorm:"not null"                  json:"name"`
	Price     float64   `gorm:"not null;check:price >= 0" json:"price"`
	Quantity  uint      `gorm:"default:0"                 json:"quantity"`
	Type      string    `gorm:"not null"                  json:"type"`
	Category  string    `gorm:"not null"                  json:"category"`
	ImageURL  string    `json:"image_url"`
	OwnerID   uint      `gorm:"index;not null"            json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartItem rows are unique per (account, product); duplicate adds fold into
// the quantity instead of creating a second row.
type CartItem struct {
	ID        uint `gorm:"primaryKey"                               json:"id"`
	AccountID uint `gorm:"uniqueIndex:idx_account_product;not null" json:"account_id"`
	ProductID uint `gorm:"uniqueIndex:idx_account_product;not null" json:"product_id"`
	Quantity  int  `gorm:"not null"                                 json:"quantity"`
}

type Video struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"not null"                 json:"title"`
	Description string    `json:"description"`
	VideoURL    string    `gorm:"not null"                 json:"video_url"`
	OwnerID     uint      `gorm:"index;not null"           json:"owner_id"`
	Views       uint      `gorm:"default:0"                json:"views"`
	LikesCount  int64     `gorm:"default:0"                json:"likes_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Like struct {
	ID        uint `gorm:"primaryKey"                             json:"id"`
	VideoID   uint `gorm:"uniqueIndex:idx_video_account;not null" json:"video_id"`
	AccountID uint `gorm:"uniqueIndex:idx_video_account;not null" json:"account_id"`
}
