package session

import "errors"

// 本地校验错误：同步、可恢复，调用方修正输入后可直接重试
var (
	ErrDepotMismatch  = errors.New("购物车只能包含同一气站的商品")
	ErrAlreadyApplied = errors.New("每个订单只能应用一个奖励")
	ErrUnknownAddress = errors.New("地址不在当前会话中")
	ErrUnknownProgram = errors.New("忠诚度计划不在当前会话中")
)
