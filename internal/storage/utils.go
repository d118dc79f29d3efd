package storage

import (
	"errors"
	"strconv"

	"gorm.io/gorm"
)

// StrToUint 将字符串转换为 uint。
func StrToUint(s string) (uint, error) {
	val, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(val), nil
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// Requires gorm.Config.TranslateError.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
