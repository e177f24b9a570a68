package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"libtrack/pkg/models"
)

// LoanPeriod is how long a borrowed book may be kept.
const LoanPeriod = 14 * 24 * time.Hour

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrBookUnavailable = errors.New("book not available")
	ErrDuplicateLoan   = errors.New("book already borrowed by this user")
	ErrLoanNotFound    = errors.New("borrowing not found")
)

// Service implements the borrow/return lifecycle. Every mutation runs in a
// single transaction; availability counters are only changed through
// conditional updates so concurrent requests on the same book cannot both
// claim the last copy.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Borrow(userID, bookID uint) (*models.Borrowing, error) {
	var borrowing models.Borrowing

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var book models.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		if book.AvailableCopies <= 0 {
			return ErrBookUnavailable
		}

		var active int64
		err := tx.Model(&models.Borrowing{}).
			Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, models.StatusBorrowed).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrDuplicateLoan
		}

		now := time.Now()
		borrowing = models.Borrowing{
			ReceiptUid: uuid.New().String(),
			UserID:     userID,
			BookID:     bookID,
			BorrowedAt: now,
			DueDate:    now.Add(LoanPeriod),
			Status:     models.StatusBorrowed,
		}
		if err := tx.Create(&borrowing).Error; err != nil {
			return err
		}

		// Conditional decrement: zero rows affected means another request
		// took the last copy since our read, so the whole transaction rolls
		// back and the caller sees the book as unavailable.
		res := tx.Model(&models.Book{}).
			Where("id = ? AND available_copies > 0", bookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookUnavailable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &borrowing, nil
}

func (s *Service) Return(userID, borrowingID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var borrowing models.Borrowing
		err := tx.Where("id = ? AND user_id = ? AND status = ?",
			borrowingID, userID, models.StatusBorrowed).
			First(&borrowing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return err
		}

		now := time.Now()
		res := tx.Model(&models.Borrowing{}).
			Where("id = ? AND status = ?", borrowingID, models.StatusBorrowed).
			Updates(map[string]interface{}{
				"status":      models.StatusReturned,
				"returned_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLoanNotFound
		}

		// The guard keeps available_copies from ever overshooting
		// total_copies; zero rows here means the counters are out of sync.
		res = tx.Model(&models.Book{}).
			Where("id = ? AND available_copies < total_copies", borrowing.BookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("inventory invariant violated for book %d", borrowing.BookID)
		}
		return nil
	})
}

// BorrowedBook is one row of a user's loan history, joined with the book.
type BorrowedBook struct {
	ID           uint                   `json:"id"`
	BookID       uint                   `json:"bookId"`
	BorrowedAt   time.Time              `json:"borrowedAt"`
	DueDate      time.Time              `json:"dueDate"`
	ReturnedAt   *time.Time             `json:"returnedAt"`
	Status       models.BorrowingStatus `json:"status"`
	BookTitle    string                 `json:"bookTitle"`
	BookAuthor   string                 `json:"bookAuthor"`
	CategoryName *string                `json:"categoryName"`
}

func (s *Service) UserBorrowings(userID uint) ([]BorrowedBook, error) {
	var rows []BorrowedBook
	err := s.db.Model(&models.Borrowing{}).
		Select("borrowings.id, borrowings.book_id, borrowings.borrowed_at, borrowings.due_date, "+
			"borrowings.returned_at, borrowings.status, "+
			"books.title AS book_title, books.author AS book_author, "+
			"categories.name AS category_name").
		Joins("JOIN books ON books.id = borrowings.book_id").
		Joins("LEFT JOIN categories ON categories.id = books.category_id").
		Where("borrowings.user_id = ?", userID).
		Order("borrowings.borrowed_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Receipt is the payload behind a borrowing receipt.
type Receipt struct {
	BorrowingID uint      `json:"borrowingId"`
	ReceiptUid  string    `json:"receiptUid"`
	BorrowedAt  time.Time `json:"borrowedAt"`
	DueDate     time.Time `json:"dueDate"`
	BookTitle   string    `json:"bookTitle"`
	BookAuthor  string    `json:"bookAuthor"`
	BookIsbn    string    `json:"bookIsbn"`
	UserName    string    `json:"userName"`
	UserEmail   string    `json:"userEmail"`
}

func (s *Service) Receipt(borrowingID uint) (*Receipt, error) {
	var borrowing models.Borrowing
	err := s.db.Preload("Book").Preload("User").First(&borrowing, borrowingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return &Receipt{
		BorrowingID: borrowing.ID,
		ReceiptUid:  borrowing.ReceiptUid,
		BorrowedAt:  borrowing.BorrowedAt,
		DueDate:     borrowing.DueDate,
		BookTitle:   borrowing.Book.Title,
		BookAuthor:  borrowing.Book.Author,
		BookIsbn:    borrowing.Book.Isbn,
		UserName:    borrowing.User.Name,
		UserEmail:   borrowing.User.Email,
	}, nil
}

// CheckInventoryInvariant verifies that a book's available count equals its
// total count minus the number of active loans.
func (s *Service) CheckInventoryInvariant(bookID uint) error {
	var book models.Book
	if err := s.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	var active int64
	err := s.db.Model(&models.Borrowing{}).
		Where("book_id = ? AND status = ?", bookID, models.StatusBorrowed).
		Count(&active).Error
	if err != nil {
		return err
	}

	if book.AvailableCopies < 0 || book.AvailableCopies > book.TotalCopies {
		return fmt.Errorf("book %d: available_copies %d outside [0, %d]",
			bookID, book.AvailableCopies, book.TotalCopies)
	}
	if expected := book.TotalCopies - int(active); book.AvailableCopies != expected {
		return fmt.Errorf("book %d: available_copies %d, expected %d (%d active loans)",
			bookID, book.AvailableCopies, expected, active)
	}
	return nil
}
