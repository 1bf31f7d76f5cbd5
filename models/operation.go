package models

import (
	"context"
	"errors"
	"time"

	"github.com/comexdata/customs_backend/config"
	"github.com/comexdata/customs_backend/utils"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// Operation is a customs brokerage case tracked from intake to closure.
// CurrentStatus is mutated only through the status transition workflow;
// Version backs the optimistic concurrency check.
type Operation struct {
	ID              int                      `gorm:"primary_key" json:"id"`
	OperationNumber string                   `gorm:"size:50;uniqueIndex;not null" json:"operation_number" binding:"required"`
	ClientName      string                   `gorm:"size:255;not null" json:"client_name" binding:"required"`
	CurrentStatus   OperationStatus          `gorm:"type:enum('DRAFT','DOCUMENTATION_COMPLETE','IN_REVIEW','PENDING_CORRECTION','PRELIQUIDATION_REVIEW','ANALYST_ASSIGNED','DECLARATION_IN_PROGRESS','SUBMITTED_TO_CUSTOMS','VALUATION_REVIEW','PAYMENT_PREPARATION','IN_TRANSIT','CLOSED','CANCELLED');not null;default:'DRAFT'" json:"current_status"`
	InspectionType  *InspectionType          `gorm:"type:enum('EXPRESSO','VISUAL','FISICA');default:null" json:"inspection_type"`
	Version         int                      `gorm:"not null;default:1" json:"version"`
	Declarations    []Declaration            `gorm:"foreignKey:OperationId" json:"declarations"`
	StatusHistories []OperationStatusHistory `gorm:"foreignKey:OperationId" json:"status_histories"`
	CreatedAt       time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewOperation struct {
	OperationNumber string  `json:"operation_number" binding:"required"`
	ClientName      string  `json:"client_name" binding:"required"`
	InspectionType  *string `json:"inspection_type"`
}

// OperationStatusHistory is append-only: rows are created on each committed
// transition and never updated or deleted. The full lifecycle audit trail is
// replayable from this table alone.
type OperationStatusHistory struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OperationId    int             `gorm:"index;not null" json:"operation_id"`
	PreviousStatus OperationStatus `gorm:"size:30;not null" json:"previous_status"`
	NewStatus      OperationStatus `gorm:"size:30;not null" json:"new_status"`
	UserId         int             `gorm:"index;not null" json:"user_id"`
	UserName       string          `gorm:"size:100" json:"user_name"`
	Comment        string          `gorm:"type:text" json:"comment"`
	ClientIp       string          `gorm:"size:45" json:"client_ip"`
	CorrelationId  string          `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func CreateOperation(ctx context.Context, input NewOperation) (*Operation, error) {
	db := config.GetDB()

	operation := Operation{
		OperationNumber: input.OperationNumber,
		ClientName:      input.ClientName,
		CurrentStatus:   OperationStatusDraft,
		Version:         1,
	}
	if input.InspectionType != nil {
		inspectionType, err := ParseInspectionType(*input.InspectionType)
		if err != nil {
			return nil, &utils.ValidationError{Field: "inspection_type", Detail: err.Error()}
		}
		operation.InspectionType = &inspectionType
	}

	if err := db.WithContext(ctx).Create(&operation).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, &utils.ValidationError{Field: "operation_number", Detail: "operation number already exists"}
		}
		return nil, err
	}
	return &operation, nil
}

func GetOperationById(ctx context.Context, tx *gorm.DB, id int) (*Operation, error) {
	var operation Operation
	err := tx.WithContext(ctx).Where("id = ?", id).First(&operation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &operation, nil
}

// UpdateOperationStatus performs the optimistic status write. The WHERE on
// version detects concurrent writers; zero rows affected means someone else
// committed first.
func UpdateOperationStatus(ctx context.Context, tx *gorm.DB, operation *Operation, newStatus OperationStatus) error {
	result := tx.WithContext(ctx).Model(&Operation{}).
		Where("id = ? AND version = ?", operation.ID, operation.Version).
		Updates(map[string]interface{}{
			"current_status": newStatus,
			"version":        operation.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &utils.ConcurrentModificationError{Resource: "operation", Id: operation.ID}
	}
	operation.CurrentStatus = newStatus
	operation.Version++
	return nil
}

// GetStatusHistory returns the audit trail oldest-first so callers can replay
// the lifecycle in order.
func GetStatusHistory(ctx context.Context, operationId int) ([]OperationStatusHistory, error) {
	db := config.GetDB()
	var histories []OperationStatusHistory
	err := db.WithContext(ctx).
		Where("operation_id = ?", operationId).
		Order("id ASC").
		Find(&histories).Error
	if err != nil {
		return nil, err
	}
	return histories, nil
}
