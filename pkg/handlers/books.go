package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"libtrack/pkg/models"
)

type BookHandler struct {
	db *gorm.DB
}

func NewBookHandler(db *gorm.DB) *BookHandler {
	return &BookHandler{db: db}
}

func (h *BookHandler) GetBooks(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("size", "10")
	search := c.Query("search")
	category := c.Query("category")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > 100 {
		size = 10
	}

	query := h.db.Model(&models.Book{}).Where("is_active = ?", true)
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR isbn LIKE ?", pattern, pattern, pattern)
	}
	if category != "" {
		categoryID, err := strconv.Atoi(category)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
			return
		}
		query = query.Where("category_id = ?", categoryID)
	}

	var totalElements int64
	query.Count(&totalElements)

	var books []models.Book
	offset := (page - 1) * size
	err = query.Preload("Category").Offset(offset).Limit(size).Order("title").Find(&books).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(books))
	for i, book := range books {
		items[i] = bookPayload(book)
	}
	c.JSON(http.StatusOK, gin.H{
		"page":          page,
		"pageSize":      size,
		"totalElements": totalElements,
		"items":         items,
	})
}

func (h *BookHandler) GetBook(c *gin.Context) {
	bookID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return
	}

	var book models.Book
	if err := h.db.Preload("Category").First(&book, bookID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	c.JSON(http.StatusOK, bookPayload(book))
}

func (h *BookHandler) CreateBook(c *gin.Context) {
	var request struct {
		Title           string `json:"title" binding:"required"`
		Author          string `json:"author" binding:"required"`
		Isbn            string `json:"isbn"`
		Publisher       string `json:"publisher"`
		PublicationYear int    `json:"publicationYear"`
		Description     string `json:"description"`
		Location        string `json:"location"`
		TotalCopies     int    `json:"totalCopies"`
		AvailableCopies *int   `json:"availableCopies"`
		CategoryID      *uint  `json:"categoryId"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if request.TotalCopies < 1 {
		request.TotalCopies = 1
	}
	available := request.TotalCopies
	if request.AvailableCopies != nil {
		available = *request.AvailableCopies
	}
	if available < 0 || available > request.TotalCopies {
		c.JSON(http.StatusBadRequest, gin.H{"error": "availableCopies must be between 0 and totalCopies"})
		return
	}

	if request.CategoryID != nil {
		var category models.Category
		if err := h.db.First(&category, *request.CategoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
			return
		}
	}

	book := models.Book{
		Title:           request.Title,
		Author:          request.Author,
		Isbn:            request.Isbn,
		Publisher:       request.Publisher,
		PublicationYear: request.PublicationYear,
		Description:     request.Description,
		Location:        request.Location,
		TotalCopies:     request.TotalCopies,
		AvailableCopies: available,
		CategoryID:      request.CategoryID,
		IsActive:        true,
	}
	if err := h.db.Create(&book).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create book"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Book created successfully",
		"book":    bookPayload(book),
	})
}

func (h *BookHandler) GetCategories(c *gin.Context) {
	var categories []models.Category
	if err := h.db.Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(categories))
	for i, cat := range categories {
		items[i] = gin.H{
			"id":          cat.ID,
			"name":        cat.Name,
			"description": cat.Description,
		}
	}
	c.JSON(http.StatusOK, items)
}

func (h *BookHandler) CreateCategory(c *gin.Context) {
	var request struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	var existing models.Category
	err := h.db.Where("name = ?", request.Name).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	category := models.Category{Name: request.Name, Description: request.Description}
	if err := h.db.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":   category.ID,
		"name": category.Name,
	})
}

func bookPayload(book models.Book) gin.H {
	payload := gin.H{
		"id":              book.ID,
		"title":           book.Title,
		"author":          book.Author,
		"isbn":            book.Isbn,
		"publisher":       book.Publisher,
		"publicationYear": book.PublicationYear,
		"description":     book.Description,
		"location":        book.Location,
		"totalCopies":     book.TotalCopies,
		"availableCopies": book.AvailableCopies,
	}
	if book.Category != nil {
		payload["category"] = gin.H{
			"id":   book.Category.ID,
			"name": book.Category.Name,
		}
	}
	return payload
}
