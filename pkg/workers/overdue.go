package workers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"libtrack/pkg/circuitbreaker"
	"libtrack/pkg/models"
	"libtrack/pkg/queue"
)

const (
	DefaultFinePerDayCents = 500
	maxNoticeRetries       = 5
	retryBackoff           = 30 * time.Second
)

// Overdue scans active loans past their due date, records a fine per loan,
// and delivers overdue notices to an optional webhook. A loan is fined at
// most once; the unique index on fines.borrowing_id backs that up.
type Overdue struct {
	db              *gorm.DB
	finePerDayCents int
	webhookURL      string
	notices         *queue.Queue
	breaker         *circuitbreaker.CircuitBreaker
	httpClient      *http.Client
}

func NewOverdue(db *gorm.DB, finePerDayCents int, webhookURL string) *Overdue {
	if finePerDayCents <= 0 {
		finePerDayCents = DefaultFinePerDayCents
	}
	return &Overdue{
		db:              db,
		finePerDayCents: finePerDayCents,
		webhookURL:      webhookURL,
		notices:         queue.NewQueue(),
		breaker:         circuitbreaker.New(3, 60*time.Second),
		httpClient:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Start runs an immediate scan and then repeats on the given interval.
func (o *Overdue) Start(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		o.Scan()
		for range ticker.C {
			o.Scan()
		}
	}()
}

// Scan assesses fines for overdue active loans and drains the notice queue.
func (o *Overdue) Scan() {
	log.Println("Worker: checking for overdue loans...")

	var overdue []models.Borrowing
	err := o.db.Preload("Book").Preload("User").
		Where("status = ? AND due_date < ?", models.StatusBorrowed, time.Now()).
		Find(&overdue).Error
	if err != nil {
		log.Printf("Worker: failed to load overdue loans: %v", err)
		return
	}

	for _, b := range overdue {
		var existing models.Fine
		if err := o.db.Where("borrowing_id = ?", b.ID).First(&existing).Error; err == nil {
			continue
		}

		daysLate := int(time.Since(b.DueDate).Hours()/24) + 1
		fine := models.Fine{
			BorrowingID: b.ID,
			DaysLate:    daysLate,
			AmountCents: daysLate * o.finePerDayCents,
			AssessedAt:  time.Now(),
		}
		if err := o.db.Create(&fine).Error; err != nil {
			log.Printf("Worker: failed to record fine for borrowing %d: %v", b.ID, err)
			continue
		}
		log.Printf("Worker: fined borrowing %d (%d days late, %d cents)",
			b.ID, daysLate, fine.AmountCents)

		o.notices.Enqueue(&queue.Notice{
			ID:          uuid.New().String(),
			BorrowingID: b.ID,
			UserEmail:   b.User.Email,
			BookTitle:   b.Book.Title,
			DaysLate:    daysLate,
			AmountCents: fine.AmountCents,
			RetryAt:     time.Now(),
			MaxRetries:  maxNoticeRetries,
		})
	}

	o.drainNotices()
}

func (o *Overdue) drainNotices() {
	if o.webhookURL == "" {
		// No webhook configured; drop pending notices instead of growing the queue.
		for o.notices.Dequeue() != nil {
		}
		return
	}

	for {
		notice := o.notices.Dequeue()
		if notice == nil {
			return
		}

		err := o.breaker.Call(func() error {
			return o.postNotice(notice)
		})
		if err == nil {
			continue
		}

		notice.RetryCount++
		if notice.RetryCount >= notice.MaxRetries {
			log.Printf("Worker: dropping notice %s after %d attempts: %v",
				notice.ID, notice.RetryCount, err)
			continue
		}
		notice.RetryAt = time.Now().Add(retryBackoff)
		o.notices.Enqueue(notice)

		if err == circuitbreaker.ErrOpen {
			// Everything else due now would be rejected too.
			return
		}
	}
}

func (o *Overdue) postNotice(n *queue.Notice) error {
	body, err := json.Marshal(map[string]interface{}{
		"noticeId":    n.ID,
		"borrowingId": n.BorrowingID,
		"userEmail":   n.UserEmail,
		"bookTitle":   n.BookTitle,
		"daysLate":    n.DaysLate,
		"amountCents": n.AmountCents,
	})
	if err != nil {
		return err
	}

	resp, err := o.httpClient.Post(o.webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// PendingNotices reports how many notices are waiting for delivery.
func (o *Overdue) PendingNotices() int {
	return o.notices.Size()
}
