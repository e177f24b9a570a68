package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"libtrack/pkg/auth"
	"libtrack/pkg/database"
	"libtrack/pkg/handlers"
	"libtrack/pkg/ledger"
	"libtrack/pkg/models"
	"libtrack/pkg/workers"
)

func main() {
	log.Println("Starting libtrack service...")

	db, err := database.Init()
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}

	seedTestData(db)

	finePerDay, _ := strconv.Atoi(getEnv("FINE_PER_DAY_CENTS", "500"))
	overdue := workers.NewOverdue(db, finePerDay, os.Getenv("OVERDUE_WEBHOOK_URL"))
	overdue.Start(24 * time.Hour)

	server := setupRouter(db)

	port := getEnv("PORT", "8080")
	log.Printf("libtrack service starting on :%s", port)
	if err := server.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func setupRouter(db *gorm.DB) *gin.Engine {
	authHandler := handlers.NewAuthHandler(db)
	bookHandler := handlers.NewBookHandler(db)
	loanHandler := handlers.NewLoanHandler(ledger.NewService(db))
	issueHandler := handlers.NewIssueHandler(db)
	healthHandler := handlers.NewHealthHandler(db)

	server := gin.Default()

	server.POST("/api/signup", authHandler.Signup)
	server.POST("/api/signin", authHandler.Signin)

	server.GET("/api/books", bookHandler.GetBooks)
	server.GET("/api/books/:id", bookHandler.GetBook)
	server.GET("/api/categories", bookHandler.GetCategories)
	server.GET("/api/issues", issueHandler.GetIssues)
	server.GET("/api/issues/:id", issueHandler.GetIssue)

	protected := server.Group("/api", auth.RequireAuth())
	protected.POST("/books", bookHandler.CreateBook)
	protected.POST("/categories", bookHandler.CreateCategory)
	protected.POST("/borrow", loanHandler.Borrow)
	protected.POST("/return", loanHandler.Return)
	protected.GET("/my-books", loanHandler.MyBooks)
	protected.GET("/receipt", loanHandler.GetReceipt)
	protected.POST("/issues", issueHandler.CreateIssue)
	protected.POST("/issues/:id/comments", issueHandler.CreateComment)
	protected.PATCH("/issues/:id/status", issueHandler.UpdateStatus)

	server.GET("/manage/health", healthHandler.Check)

	return server
}

func seedTestData(db *gorm.DB) {
	categories := []models.Category{
		{Name: "Fiction", Description: "Novels and short stories"},
		{Name: "Science", Description: "Popular science and textbooks"},
		{Name: "History", Description: "Historical works"},
	}
	for _, cat := range categories {
		var existing models.Category
		if err := db.Where("name = ?", cat.Name).First(&existing).Error; err != nil {
			if err := db.Create(&cat).Error; err != nil {
				log.Printf("Failed to create category %s: %v", cat.Name, err)
			}
		}
	}

	var fiction models.Category
	db.Where("name = ?", "Fiction").First(&fiction)

	books := []models.Book{
		{
			Title:           "The Go Programming Language",
			Author:          "Alan A. A. Donovan",
			Isbn:            "978-0134190440",
			Publisher:       "Addison-Wesley",
			PublicationYear: 2015,
			TotalCopies:     3,
			AvailableCopies: 3,
		},
		{
			Title:           "The Master and Margarita",
			Author:          "Mikhail Bulgakov",
			Isbn:            "978-0143108276",
			PublicationYear: 1967,
			TotalCopies:     2,
			AvailableCopies: 2,
			CategoryID:      &fiction.ID,
		},
	}
	for _, book := range books {
		var existing models.Book
		if err := db.Where("title = ?", book.Title).First(&existing).Error; err != nil {
			if err := db.Create(&book).Error; err != nil {
				log.Printf("Failed to create book %s: %v", book.Title, err)
			} else {
				log.Printf("Created book: %s", book.Title)
			}
		}
	}
	log.Println("Test data seeded")
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
