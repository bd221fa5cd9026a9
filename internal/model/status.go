package model

// Status fields are persisted as short strings so the rows stay readable in
// ad-hoc queries. Each type is closed: values outside the declared constants
// never enter the database through this codebase.

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderCancelled OrderStatus = "CANCELLED"
)

type CommissionStatus string

const (
	CommissionFrozen    CommissionStatus = "FROZEN"
	CommissionAvailable CommissionStatus = "AVAILABLE"
)

type WithdrawalStatus string

const (
	WithdrawalPending    WithdrawalStatus = "PENDING"
	WithdrawalApproved   WithdrawalStatus = "APPROVED"
	WithdrawalProcessing WithdrawalStatus = "PROCESSING"
	WithdrawalCompleted  WithdrawalStatus = "COMPLETED"
	WithdrawalRejected   WithdrawalStatus = "REJECTED"
)

// InFlight reports whether the withdrawal still reserves balance: a user may
// hold at most one in-flight withdrawal at a time.
func (s WithdrawalStatus) InFlight() bool {
	switch s {
	case WithdrawalPending, WithdrawalApproved, WithdrawalProcessing:
		return true
	}
	return false
}
