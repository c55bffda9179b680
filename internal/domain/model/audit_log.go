package model

import (
	"strings"
	"time"
)

// スタッフ操作の種類
type AuditAction string

const (
	AuditActionUpdateStock         AuditAction = "UPDATE_STOCK"
	AuditActionUpdateOrderStatus   AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionUpdatePaymentStatus AuditAction = "UPDATE_PAYMENT_STATUS"
	AuditActionCancelOrder         AuditAction = "CANCEL_ORDER" // 本人以外のキャンセル
	AuditActionUpdateUserRoles     AuditAction = "UPDATE_USER_ROLES"
	AuditActionForceLogout         AuditAction = "FORCE_LOGOUT"
)

// ParseAuditAction は大文字小文字を区別しない
func ParseAuditAction(s string) (AuditAction, bool) {
	a := AuditAction(strings.ToUpper(strings.TrimSpace(s)))
	switch a {
	case AuditActionUpdateStock, AuditActionUpdateOrderStatus, AuditActionUpdatePaymentStatus,
		AuditActionCancelOrder, AuditActionUpdateUserRoles, AuditActionForceLogout:
		return a, true
	}
	return "", false
}

type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
)

func ParseAuditResourceType(s string) (AuditResourceType, bool) {
	rt := AuditResourceType(strings.ToLower(strings.TrimSpace(s)))
	switch rt {
	case AuditResourceProduct, AuditResourceOrder, AuditResourceUser:
		return rt, true
	}
	return "", false
}

// AuditLog は1回のスタッフ操作。before/after は変わった項目だけのJSON。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actorUserId"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index:idx_audit_resource" json:"resourceType"`
	ResourceID   int64             `gorm:"not null;index:idx_audit_resource" json:"resourceId"`
	BeforeJSON   string            `gorm:"type:text" json:"beforeJson"`
	AfterJSON    string            `gorm:"type:text" json:"afterJson"`
	CreatedAt    time.Time         `gorm:"not null;index" json:"createdAt"`
}
