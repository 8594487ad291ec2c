package handlers

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "Invalid request"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "a valid email is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "len":
		return fe.Field() + " must be exactly " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}

func parseLimitOffset(limitStr, offsetStr string) (int, int) {
	limit, offset := 50, 0
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}

type causeFilters struct {
	Category string
	Status   string
	Location string
}

// applyCauseFilters keeps the count and data queries in sync as a GORM scope.
func applyCauseFilters(f causeFilters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Category != "" {
			db = db.Where("category = ?", f.Category)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.Location != "" {
			db = db.Where("location = ?", f.Location)
		}
		return db
	}
}
