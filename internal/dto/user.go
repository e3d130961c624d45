package dto

// ── 账号管理 DTO ──

// UserListRequest 账号列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role string `form:"role" binding:"omitempty,oneof=admin staff student"`
}

// SetUserActiveRequest 启用/停用账号
type SetUserActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// AdminUserResponse 管理端账号信息
type AdminUserResponse struct {
	UserResponse
	IsActive bool `json:"is_active"`
}

// ResetPasswordResponse 重置密码响应（临时密码仅返回一次）
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}
