package service

import (
	"errors"
	"fmt"
)

// ==================== 错误定义 ====================

// 结账前置校验错误：同步、可恢复，调用方修正输入后可安全重试
var (
	ErrMissingAddress   = errors.New("请先选择收货地址")
	ErrNotAuthenticated = errors.New("请先登录")
	ErrEmptyCart        = errors.New("购物车为空")

	ErrUnknownPayment     = errors.New("未知的支付方式")
	ErrRewardNotEligible  = errors.New("奖励商品不在购物车中")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserDisabled       = errors.New("用户已禁用")
	ErrInvalidToken       = errors.New("Token 无效")
)

// ==================== StoreError 远端存储错误 ====================

// StoreError 远端存储/传输失败
// 统一视为可重试错误：引擎不自动重试，失败时本地状态保持
// 调用前原样，调用方可安全再次发起
type StoreError struct {
	Code    string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store error [%s]: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("store error [%s]: %s", e.Code, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// WrapStoreError 包装远端失败
func WrapStoreError(code, message string, err error) *StoreError {
	return &StoreError{Code: code, Message: message, Err: err}
}

// IsStoreError 判断是否为远端存储错误
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
