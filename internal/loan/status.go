// Package loan derives the effective status of a loan from its
// authoritative fields. Status is never stored: a stored copy could
// diverge from the dates once a loan is extended.
package loan

import (
	"time"

	"github.com/libradesk/libradesk/internal/model"
)

type Status string

const (
	StatusReturned   Status = "RETURNED"
	StatusOverdue    Status = "OVERDUE"
	StatusInProgress Status = "IN_PROGRESS"
)

// DueDate is startDate plus the loan duration in calendar days: a loan of
// N days is due at the same time of day N days later, DST shifts included.
func DueDate(l model.Loan) time.Time {
	return l.StartDate.AddDate(0, 0, l.DurationDays)
}

// DeriveStatus computes the loan status at the given instant.
//
// A present return date wins unconditionally; a returned loan is never
// overdue no matter how late the return was, and the date ordering is not
// validated here (that belongs to the server that accepted the return).
func DeriveStatus(l model.Loan, now time.Time) Status {
	if l.ReturnDate != nil {
		return StatusReturned
	}
	if now.After(DueDate(l)) {
		return StatusOverdue
	}
	return StatusInProgress
}
