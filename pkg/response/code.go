package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户/鉴权模块错误 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 审核模块错误 300xx
	ErrPostNotFound      = 30001
	ErrInvalidStatus     = 30002
	ErrInvalidTransition = 30003

	// 迁移模块错误 400xx
	ErrJobNotFound       = 40001
	ErrJobInvalidState   = 40002
	ErrConfigInvalid     = 40003
	ErrNothingToRollback = 40004

	// 兴趣/故事模块错误 600xx
	ErrInterestNotFound = 60001
	ErrInterestInvalid  = 60002
	ErrStoryNotFound    = 60003
	ErrStoryExpired     = 60004

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
