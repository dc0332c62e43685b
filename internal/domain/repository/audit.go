package repository

import "guarita/internal/domain/entity"

// AuditTrail persists completed session records for operator review.
type AuditTrail interface {
	Record(record entity.SessionRecord) error
	Recent(limit int) ([]entity.SessionRecord, error)
}
