package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrappedSentinelsMatchRoot(t *testing.T) {
	errStudentNotFound := fmt.Errorf("%w: 学生不存在", ErrNotFound)

	if !errors.Is(errStudentNotFound, ErrNotFound) {
		t.Error("包装后的错误应匹配 ErrNotFound")
	}
	if errors.Is(errStudentNotFound, ErrValidationFailed) {
		t.Error("不应匹配 ErrValidationFailed")
	}
}
