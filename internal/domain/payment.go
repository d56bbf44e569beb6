package domain

import "time"

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCreditCard PaymentMethod = "credit_card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCreditCard
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment records one charge attempt. It is attached to a ticket only once
// its status is completed.
type Payment struct {
	ID          string        `json:"id"`
	Amount      float64       `json:"amount"`
	Method      PaymentMethod `json:"method"`
	Status      PaymentStatus `json:"status"`
	CompletedAt time.Time     `json:"completed_at"`
}
