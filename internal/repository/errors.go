package repository

import (
	"errors"
	"fmt"
)

// Validation errors. Not-found is never an error: updates return nil and
// deletes return false.
var (
	ErrDuplicateUsername     = errors.New("username already exists")
	ErrProgramManagerExists  = errors.New("a program manager account already exists")
	ErrInsufficientStock     = errors.New("withdrawal exceeds quantity on hand")
	ErrInvalidQuantity       = errors.New("quantity must be greater than zero")
	ErrNegativeQuantity      = errors.New("quantity cannot be negative")
	ErrInvalidInventoryType  = errors.New("inventory type must be diagnostic or tools")
	ErrInvalidRole           = errors.New("role is not valid for this domain")
	ErrInvalidApprovalStatus = errors.New("invalid approval status")
	ErrMissingField          = errors.New("required field is empty")
	ErrParentNotFound        = errors.New("referenced record does not exist")
	ErrDuplicateNumber       = errors.New("procedure number already in use")
	ErrItemNotFound          = errors.New("inventory item not found")
)

var messages = map[error]string{
	ErrDuplicateUsername:     "اسم المستخدم موجود مسبقاً",
	ErrProgramManagerExists:  "يوجد مدير برنامج مسجل مسبقاً، لا يمكن إضافة مدير آخر",
	ErrInsufficientStock:     "الكمية المطلوبة أكبر من الكمية المتوفرة في المخزون",
	ErrInvalidQuantity:       "يجب أن تكون الكمية أكبر من صفر",
	ErrNegativeQuantity:      "لا يمكن أن تكون الكمية سالبة",
	ErrInvalidInventoryType:  "نوع الصنف غير صالح",
	ErrInvalidRole:           "الدور غير صالح لهذا النظام",
	ErrInvalidApprovalStatus: "حالة الاعتماد غير صالحة",
	ErrMissingField:          "يرجى تعبئة جميع الحقول المطلوبة",
	ErrParentNotFound:        "السجل المرتبط غير موجود",
	ErrDuplicateNumber:       "رقم الإجراء مستخدم مسبقاً",
	ErrItemNotFound:          "الصنف غير موجود",
}

// Message returns the Arabic user-facing text for a validation error, or
// err.Error() when none is registered.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for sentinel, msg := range messages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return err.Error()
}

// IsValidation reports whether err is one of the validation sentinels.
func IsValidation(err error) bool {
	for sentinel := range messages {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}
