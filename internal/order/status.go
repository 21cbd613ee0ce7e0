package order

// Status is the fulfilment axis. It advances Processing -> Shipped ->
// Delivered, or drops to Cancelled from any non-terminal state.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusProcessing: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// CanAdvance is CanTransition restricted to the forward sequence; cancellation
// has its own operation with its own actor rules.
func CanAdvance(from, to Status) bool {
	return to != StatusCancelled && validNext[from][to]
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// PaymentStatus is the payment axis. It is independent of Status: an operator
// records the external approver's verdict exactly once.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentApproved PaymentStatus = "Approved"
	PaymentRejected PaymentStatus = "Rejected"
)

func CanSetPayment(from, to PaymentStatus) bool {
	return from == PaymentPending && (to == PaymentApproved || to == PaymentRejected)
}

// Values recorded in cancelled_by.
const (
	CancelledByCustomer = "USER"
	CancelledByOperator = "ADMIN"
)
