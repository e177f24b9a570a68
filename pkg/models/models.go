package models

import (
	"time"
)

type BorrowingStatus string

const (
	StatusBorrowed BorrowingStatus = "borrowed"
	StatusReturned BorrowingStatus = "returned"
)

type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueClosed     IssueStatus = "closed"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:255"`
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null;uniqueIndex"`
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Book struct {
	ID              uint   `gorm:"primaryKey"`
	Title           string `gorm:"size:255;not null"`
	Author          string `gorm:"size:255;not null"`
	Isbn            string `gorm:"size:20"`
	Publisher       string `gorm:"size:255"`
	PublicationYear int
	Description     string
	Location        string `gorm:"size:100"`
	TotalCopies     int    `gorm:"not null;check:total_copies >= 0"`
	AvailableCopies int    `gorm:"not null;check:available_copies >= 0 AND available_copies <= total_copies"`
	CategoryID      *uint  `gorm:"index"`
	IsActive        bool   `gorm:"default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
}

type Borrowing struct {
	ID         uint            `gorm:"primaryKey"`
	ReceiptUid string          `gorm:"type:uuid;uniqueIndex;not null"`
	UserID     uint            `gorm:"index;not null"`
	BookID     uint            `gorm:"index;not null"`
	BorrowedAt time.Time       `gorm:"not null"`
	DueDate    time.Time       `gorm:"not null"`
	ReturnedAt *time.Time      `gorm:"index"`
	Status     BorrowingStatus `gorm:"size:20;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User User `gorm:"foreignKey:UserID"`
	Book Book `gorm:"foreignKey:BookID"`
}

type Issue struct {
	ID          uint        `gorm:"primaryKey"`
	Title       string      `gorm:"size:255;not null"`
	Description string      `gorm:"not null"`
	Status      IssueStatus `gorm:"size:50;default:'open'"`
	UserID      uint        `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User     User      `gorm:"foreignKey:UserID"`
	Comments []Comment `gorm:"foreignKey:IssueID"`
}

type Comment struct {
	ID        uint   `gorm:"primaryKey"`
	Content   string `gorm:"not null"`
	IssueID   uint   `gorm:"index;not null"`
	UserID    uint   `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}

type Fine struct {
	ID          uint `gorm:"primaryKey"`
	BorrowingID uint `gorm:"uniqueIndex;not null"`
	AmountCents int  `gorm:"not null"`
	DaysLate    int  `gorm:"not null"`
	AssessedAt  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Borrowing Borrowing `gorm:"foreignKey:BorrowingID"`
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{}, &Category{}, &Book{}, &Borrowing{}, &Issue{}, &Comment{}, &Fine{},
	}
}
