package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"libtrack/pkg/auth"
	"libtrack/pkg/ledger"
)

type LoanHandler struct {
	ledger *ledger.Service
}

func NewLoanHandler(svc *ledger.Service) *LoanHandler {
	return &LoanHandler{ledger: svc}
}

func (h *LoanHandler) Borrow(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var request struct {
		BookID uint `json:"bookId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Book ID required"})
		return
	}

	borrowing, err := h.ledger.Borrow(userID, request.BookID)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		case errors.Is(err, ledger.ErrBookUnavailable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Book not available"})
		case errors.Is(err, ledger.ErrDuplicateLoan):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You already borrowed this book"})
		default:
			log.Printf("Borrow failed for user %d, book %d: %v", userID, request.BookID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to borrow book"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Book borrowed successfully",
		"borrowingId": borrowing.ID,
		"dueDate":     borrowing.DueDate.Format("2006-01-02"),
	})
}

func (h *LoanHandler) Return(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var request struct {
		BorrowingID uint `json:"borrowingId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Borrowing ID required"})
		return
	}

	if err := h.ledger.Return(userID, request.BorrowingID); err != nil {
		if errors.Is(err, ledger.ErrLoanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Borrowing not found"})
			return
		}
		log.Printf("Return failed for user %d, borrowing %d: %v", userID, request.BorrowingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to return book"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Book returned successfully"})
}

func (h *LoanHandler) MyBooks(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	rows, err := h.ledger.UserBorrowings(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch books"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (h *LoanHandler) GetReceipt(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	idStr := c.Query("id")
	if idStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Borrowing ID is required"})
		return
	}
	borrowingID, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid borrowing ID"})
		return
	}

	receipt, err := h.ledger.Receipt(uint(borrowingID))
	if err != nil {
		if errors.Is(err, ledger.ErrLoanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Borrowing record not found"})
			return
		}
		log.Printf("Receipt lookup failed for user %d, borrowing %d: %v", userID, borrowingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch borrowing details"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Borrowing receipt",
		"borrowing": receipt,
	})
}
