package apperrors

import (
	"errors"
	"fmt"
)

// 传输层错误
var (
	ErrNotConnected     = errors.New("连接未建立")
	ErrAlreadyConnected = errors.New("连接已存在")
	ErrConnectFailed    = errors.New("连接服务器失败")
	ErrAlreadyStarted   = errors.New("心跳已启动")
)

// 服务端错误码
const (
	CodeInvalidHello  = "INVALID_HELLO"
	CodeAuthFailed    = "AUTH_FAILED"
	CodeRoomFull      = "ROOM_FULL"
	CodeInvalidMove   = "INVALID_MOVE"
	CodeNotYourTurn   = "NOT_YOUR_TURN"
	CodeProtocolError = "PROTOCOL_ERROR"
	CodeTimeout       = "TIMEOUT"
)

// 出牌被拒原因
const (
	ReasonNotInHand   = "NOT_IN_HAND"
	ReasonNotLegal    = "NOT_LEGAL"
	ReasonNotYourTurn = "NOT_YOUR_TURN"
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[string]string{
	CodeInvalidHello:  "握手消息无效",
	CodeAuthFailed:    "认证失败",
	CodeRoomFull:      "房间已满",
	CodeInvalidMove:   "非法出牌",
	CodeNotYourTurn:   "还没轮到您",
	CodeProtocolError: "协议错误",
	CodeTimeout:       "操作超时",
}

// RejectMessages 出牌被拒原因对应的消息
var RejectMessages = map[string]string{
	ReasonNotInHand:   "手牌中没有这张牌",
	ReasonNotLegal:    "这张牌现在不能出",
	ReasonNotYourTurn: "还没轮到您",
}

// ServerError 服务端下发的错误
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	switch {
	case e.Code == "":
		return e.Message
	case e.Message == "":
		return e.Code
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// FromServer 构造 ServerError，消息为空时按错误码补全
func FromServer(code, message string) *ServerError {
	if message == "" {
		message = ErrorMessages[code]
	}
	return &ServerError{Code: code, Message: message}
}

// DescribeReject 出牌被拒原因的可读描述
func DescribeReject(reason string) string {
	if msg, ok := RejectMessages[reason]; ok {
		return msg
	}
	if reason == "" {
		return "出牌被拒绝"
	}
	return reason
}
