package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"size:120;not null"        json:"name"`
	Price       float64 `gorm:"not null"                 json:"price"`
	Description string  `gorm:"type:text;not null;default:''" json:"description"`
}

// CartItem is one unit of one product in one user's cart. Quantity is the
// number of rows sharing (UserID, ProductID).
type CartItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"        json:"id"`
	UserID    uint    `gorm:"index;not null"                  json:"user_id"`
	ProductID uint    `gorm:"index;not null"                  json:"product_id"`
	User      User    `gorm:"constraint:OnDelete:CASCADE;"    json:"-"`
	Product   Product `gorm:"constraint:OnDelete:CASCADE;"    json:"-"`
}

type Session struct {
	ID        string `gorm:"primaryKey;size:36"            json:"id"`
	UserID    uint   `gorm:"index;not null"                json:"user_id"`
	User      User   `gorm:"constraint:OnDelete:CASCADE;"  json:"-"`
	TokenHash string `gorm:"uniqueIndex;size:64;not null"  json:"-"`
	ExpiresAt int64  `gorm:"not null"                      json:"expires_at"`
	Revoked   bool   `gorm:"not null;default:false"        json:"revoked"`
}

func All() []any {
	return []any{&User{}, &Product{}, &CartItem{}, &Session{}}
}
