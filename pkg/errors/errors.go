package errors

import "errors"

// 错误分类根：各业务模块的哨兵错误用 %w 包装这些根错误，
// Handler 层据此映射 HTTP 状态码。
var (
	// ErrNotFound 学生或成绩记录不存在（404，不重试）
	ErrNotFound = errors.New("记录不存在")
	// ErrValidationFailed 分数或评价字段超出取值范围（400）
	ErrValidationFailed = errors.New("参数校验失败")
	// ErrConflict 唯一性冲突（如学籍号重复）
	ErrConflict = errors.New("数据冲突")
	// ErrRenderAborted 客户端中途断开，成绩单渲染已停止
	ErrRenderAborted = errors.New("成绩单渲染已中止")
)
