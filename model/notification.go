package model

type NotificationEvent string

const (
	EventBorrowCreated  NotificationEvent = "borrow_created"
	EventBorrowOverdue  NotificationEvent = "borrow_overdue"
	EventNoOverdueToday NotificationEvent = "no_overdue_today"
)

// Notification is handed to the notifier; Borrow is nil for EventNoOverdueToday.
type Notification struct {
	Event  NotificationEvent
	Borrow *BorrowDetail
}
