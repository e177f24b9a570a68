package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"libtrack/pkg/ledger"
	"libtrack/pkg/models"
)

func seedUserAndBook(t *testing.T, db *gorm.DB, available int) (models.User, models.Book) {
	user := models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	book := models.Book{
		Title:           "Test Book",
		Author:          "Test Author",
		TotalCopies:     available,
		AvailableCopies: available,
		IsActive:        true,
	}
	if available == 0 {
		book.TotalCopies = 1
	}
	if err := db.Create(&book).Error; err != nil {
		t.Fatalf("failed to create book: %v", err)
	}
	return user, book
}

func TestBorrowHandler(t *testing.T) {
	db := setupTestDB(t)
	h := NewLoanHandler(ledger.NewService(db))
	user, book := seedUserAndBook(t, db, 1)

	c, w := newTestContext(t, "POST", "/api/borrow", map[string]uint{"bookId": book.ID})
	authenticate(c, user.ID)
	h.Borrow(c)

	assertStatus(t, w, http.StatusOK)
	response := decodeBody(t, w)
	assert.Equal(t, "Book borrowed successfully", response["message"])
	assert.NotNil(t, response["borrowingId"])

	var updated models.Book
	db.First(&updated, book.ID)
	assert.Equal(t, 0, updated.AvailableCopies)
}

func TestBorrowHandlerUnauthenticated(t *testing.T) {
	db := setupTestDB(t)
	h := NewLoanHandler(ledger.NewService(db))
	_, book := seedUserAndBook(t, db, 1)

	c, w := newTestContext(t, "POST", "/api/borrow", map[string]uint{"bookId": book.ID})
	h.Borrow(c)
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestBorrowHandlerMissingBookID(t *testing.T) {
	db := setupTestDB(t)
	h := NewLoanHandler(ledger.NewService(db))
	user, _ := seedUserAndBook(t, db, 1)

	c, w := newTestContext(t, "POST", "/api/borrow", map[string]string{})
	authenticate(c, user.ID)
	h.Borrow(c)
	assertStatus(t, w, http.StatusBadRequest)
}

func TestBorrowHandlerBookNotFound(t *testing.T) {
	db := setupTestDB(t)
	h := NewLoanHandler(ledger.NewService(db))
	user, _ := seedUserAndBook(t, db, 1)

	c, w := newTestContext(t, "POST", "/api/borrow", map[string]uint{"bookId": 9999})
	authenticate(c, user.ID)
	h.Borrow(c)
	assertStatus(t, w, http.StatusNotFound)
}

func TestBorrowHandlerUnavailable(t *testing.T) {
	db := setupTestDB(t)
	h := NewLoanHandler(ledger.NewService(db))
	user, book := seedUserAndBook(t, db, 0)

	c, w := newTestContext(t, "POST", "/api/borrow", map[string]uint{"bookId": book.ID})
	authenticate(c, user.ID)
	h.Borrow(c)
	assertStatus(t, w, http.StatusBadRequest)
}

func TestBorrowHandlerDuplicate(t *testing.T) {
	db := setupTestDB(t)
	h := NewLoanHandler(ledger.NewService(db))
	user, book := seedUserAndBook(t, db, 2)

	c, w := newTestContext(t, "POST", "/api/borrow", map[string]uint{"bookId": book.ID})
	authenticate(c, user.ID)
	h.Borrow(c)
	assertStatus(t, w, http.StatusOK)

	c, w = newTestContext(t, "POST", "/api/borrow", map[string]uint{"bookId": book.ID})
	authenticate(c, user.ID)
	h.Borrow(c)
	assertStatus(t, w, http.StatusBadRequest)
	response := decodeBody(t, w)
	assert.Equal(t, "You already borrowed this book", response["error"])
}

func TestReturnHandler(t *testing.T) {
	db := setupTestDB(t)
	svc := ledger.NewService(db)
	h := NewLoanHandler(svc)
	user, book := seedUserAndBook(t, db, 1)

	borrowing, err := svc.Borrow(user.ID, book.ID)
	assert.NoError(t, err)

	c, w := newTestContext(t, "POST", "/api/return", map[string]uint{"borrowingId": borrowing.ID})
	authenticate(c, user.ID)
	h.Return(c)

	assertStatus(t, w, http.StatusOK)

	var updated models.Book
	db.First(&updated, book.ID)
	assert.Equal(t, 1, updated.AvailableCopies)
}

func TestReturnHandlerNotFound(t *testing.T) {
	db := setupTestDB(t)
	h := NewLoanHandler(ledger.NewService(db))
	user, _ := seedUserAndBook(t, db, 1)

	c, w := newTestContext(t, "POST", "/api/return", map[string]uint{"borrowingId": 9999})
	authenticate(c, user.ID)
	h.Return(c)
	assertStatus(t, w, http.StatusNotFound)
}

func TestReturnHandlerMissingID(t *testing.T) {
	db := setupTestDB(t)
	h := NewLoanHandler(ledger.NewService(db))
	user, _ := seedUserAndBook(t, db, 1)

	c, w := newTestContext(t, "POST", "/api/return", map[string]string{})
	authenticate(c, user.ID)
	h.Return(c)
	assertStatus(t, w, http.StatusBadRequest)
}

func TestMyBooksHandler(t *testing.T) {
	db := setupTestDB(t)
	svc := ledger.NewService(db)
	h := NewLoanHandler(svc)
	user, book := seedUserAndBook(t, db, 1)

	_, err := svc.Borrow(user.ID, book.ID)
	assert.NoError(t, err)

	c, w := newTestContext(t, "GET", "/api/my-books", nil)
	authenticate(c, user.ID)
	h.MyBooks(c)

	assertStatus(t, w, http.StatusOK)
	var rows []map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 1)
	assert.Equal(t, "Test Book", rows[0]["bookTitle"])
	assert.Equal(t, string(models.StatusBorrowed), rows[0]["status"])
}

func TestReceiptHandler(t *testing.T) {
	db := setupTestDB(t)
	svc := ledger.NewService(db)
	h := NewLoanHandler(svc)
	user, book := seedUserAndBook(t, db, 1)

	borrowing, err := svc.Borrow(user.ID, book.ID)
	assert.NoError(t, err)

	c, w := newTestContext(t, "GET", "/api/receipt?id="+strconv.FormatUint(uint64(borrowing.ID), 10), nil)
	authenticate(c, user.ID)
	h.GetReceipt(c)

	assertStatus(t, w, http.StatusOK)
	response := decodeBody(t, w)
	assert.NotNil(t, response["borrowing"])

	c, w = newTestContext(t, "GET", "/api/receipt", nil)
	authenticate(c, user.ID)
	h.GetReceipt(c)
	assertStatus(t, w, http.StatusBadRequest)

	c, w = newTestContext(t, "GET", "/api/receipt?id=9999", nil)
	authenticate(c, user.ID)
	h.GetReceipt(c)
	assertStatus(t, w, http.StatusNotFound)
}
