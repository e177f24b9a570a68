package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"libtrack/pkg/auth"
	"libtrack/pkg/models"
)

type IssueHandler struct {
	db *gorm.DB
}

func NewIssueHandler(db *gorm.DB) *IssueHandler {
	return &IssueHandler{db: db}
}

func (h *IssueHandler) GetIssues(c *gin.Context) {
	var issues []models.Issue
	err := h.db.Preload("User").Order("created_at DESC").Find(&issues).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(issues))
	for i, issue := range issues {
		items[i] = gin.H{
			"id":        issue.ID,
			"title":     issue.Title,
			"status":    issue.Status,
			"createdAt": issue.CreatedAt,
			"author":    issue.User.Name,
		}
	}
	c.JSON(http.StatusOK, items)
}

func (h *IssueHandler) GetIssue(c *gin.Context) {
	issueID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var issue models.Issue
	err = h.db.Preload("User").Preload("Comments.User").First(&issue, issueID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	comments := make([]gin.H, len(issue.Comments))
	for i, comment := range issue.Comments {
		comments[i] = gin.H{
			"id":        comment.ID,
			"content":   comment.Content,
			"createdAt": comment.CreatedAt,
			"author":    comment.User.Name,
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          issue.ID,
		"title":       issue.Title,
		"description": issue.Description,
		"status":      issue.Status,
		"createdAt":   issue.CreatedAt,
		"author":      issue.User.Name,
		"comments":    comments,
	})
}

func (h *IssueHandler) CreateIssue(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var request struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description" binding:"required"`
		Status      string `json:"status"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and description are required"})
		return
	}

	status := models.IssueStatus(request.Status)
	if request.Status == "" {
		status = models.IssueOpen
	} else if !validIssueStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be open, in_progress, or closed"})
		return
	}

	issue := models.Issue{
		Title:       request.Title,
		Description: request.Description,
		Status:      status,
		UserID:      userID,
	}
	if err := h.db.Create(&issue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     issue.ID,
		"title":  issue.Title,
		"status": issue.Status,
	})
}

func (h *IssueHandler) CreateComment(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	issueID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var request struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment content is required"})
		return
	}
	content := strings.TrimSpace(request.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment content is required"})
		return
	}

	var issue models.Issue
	if err := h.db.First(&issue, issueID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	comment := models.Comment{
		Content: content,
		IssueID: issue.ID,
		UserID:  userID,
	}
	if err := h.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": comment.ID})
}

func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	if _, ok := auth.UserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	issueID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var request struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	status := models.IssueStatus(request.Status)
	if !validIssueStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be open, in_progress, or closed"})
		return
	}

	var issue models.Issue
	if err := h.db.First(&issue, issueID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	issue.Status = status
	if err := h.db.Save(&issue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     issue.ID,
		"status": issue.Status,
	})
}

func validIssueStatus(s models.IssueStatus) bool {
	return s == models.IssueOpen || s == models.IssueInProgress || s == models.IssueClosed
}
