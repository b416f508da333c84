package job

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/config"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/model"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/repository"
)

type reminderEvent struct {
	Event         string `json:"event"`
	TransactionID string `json:"transactionId"`
	OwnerEmail    string `json:"ownerEmail"`
	CustomerID    string `json:"customerId"`
	CustomerName  string `json:"customerName"`
	Amount        string `json:"amount"`
	DueDate       string `json:"dueDate"`
	OccurredAt    string `json:"occurredAt"`
}

// OverdueReminderJob scans for PENDING credit transactions past their date
// and emits one reminder event per transaction through the outbox. Each
// transaction is reminded at most once; reminder_sent_at is the marker.
type OverdueReminderJob struct {
	db              *gorm.DB
	transactionRepo *repository.TransactionRepository
	outboxRepo      *repository.OutboxRepository
	cfg             *config.Config
	stopCh          chan struct{}
	interval        time.Duration
	batchSize       int
}

func NewOverdueReminderJob(db *gorm.DB, cfg *config.Config) *OverdueReminderJob {
	interval := time.Duration(cfg.Business.ReminderIntervalHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &OverdueReminderJob{
		db:              db,
		transactionRepo: repository.NewTransactionRepository(db),
		outboxRepo:      repository.NewOutboxRepository(db),
		cfg:             cfg,
		stopCh:          make(chan struct{}),
		interval:        interval,
		batchSize:       100,
	}
}

func (j *OverdueReminderJob) Start(ctx context.Context) {
	log.Println("[OverdueReminderJob] started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[OverdueReminderJob] context cancelled, exiting")
			return
		case <-j.stopCh:
			log.Println("[OverdueReminderJob] stopped")
			return
		case <-ticker.C:
			j.remindOverdue(ctx)
		}
	}
}

func (j *OverdueReminderJob) Stop() {
	close(j.stopCh)
}

func (j *OverdueReminderJob) remindOverdue(ctx context.Context) {
	today := model.DateOnly(time.Now())
	transactions, err := j.transactionRepo.ListDueForReminder(ctx, today, j.batchSize)
	if err != nil {
		log.Printf("[OverdueReminderJob] failed to load overdue transactions: %v", err)
		return
	}

	if len(transactions) == 0 {
		return
	}

	log.Printf("[OverdueReminderJob] found %d overdue transactions", len(transactions))

	reminded := 0
	for _, transaction := range transactions {
		if err := j.remindOne(ctx, transaction); err != nil {
			log.Printf("[OverdueReminderJob] failed to remind: id=%s, err=%v", transaction.ID, err)
			continue
		}
		reminded++
	}

	log.Printf("[OverdueReminderJob] sent %d reminders", reminded)
}

// remindOne enqueues the reminder event and marks the transaction reminded
// in one database transaction, so a crash cannot double-remind.
func (j *OverdueReminderJob) remindOne(ctx context.Context, transaction *model.Transaction) error {
	now := time.Now()
	payload := reminderEvent{
		Event:         "payment.reminder",
		TransactionID: transaction.ID,
		OwnerEmail:    transaction.UserEmail,
		CustomerID:    transaction.CustomerID,
		CustomerName:  transaction.CustomerName,
		Amount:        transaction.Amount.String(),
		DueDate:       transaction.Date.Format("2006-01-02"),
		OccurredAt:    now.Format(time.RFC3339),
	}
	return j.db.Transaction(func(tx *gorm.DB) error {
		if err := j.outboxRepo.EnqueueEvent(ctx, tx, j.cfg.Kafka.Topic.PaymentReminders, transaction.ID, payload); err != nil {
			return err
		}
		return j.transactionRepo.MarkReminded(ctx, tx, transaction.ID, now)
	})
}
