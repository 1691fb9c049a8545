// internal/service/order/domain/state.go
package domain

import (
	"encoding/json"
	"strings"
)

// Status 定义了订单的生命周期状态。不做流转校验，任何状态都可以被设置。
type Status int32

const (
	StatusUnspecified Status = iota
	StatusPending
	StatusConfirmed
	StatusProcessing
	StatusShipped
	StatusDelivered
	StatusCancelled
	StatusFailed
)

const statusPrefix = "ORDER_STATUS_"

var statusNames = map[Status]string{
	StatusUnspecified: "ORDER_STATUS_UNSPECIFIED",
	StatusPending:     "ORDER_STATUS_PENDING",
	StatusConfirmed:   "ORDER_STATUS_CONFIRMED",
	StatusProcessing:  "ORDER_STATUS_PROCESSING",
	StatusShipped:     "ORDER_STATUS_SHIPPED",
	StatusDelivered:   "ORDER_STATUS_DELIVERED",
	StatusCancelled:   "ORDER_STATUS_CANCELLED",
	StatusFailed:      "ORDER_STATUS_FAILED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[StatusUnspecified]
}

// ParseStatus 接受 "PENDING"、"ORDER_STATUS_PENDING" 等写法，不区分大小写；无法识别时返回 UNSPECIFIED
func ParseStatus(raw string) Status {
	name := strings.ToUpper(strings.TrimSpace(raw))
	if !strings.HasPrefix(name, statusPrefix) {
		name = statusPrefix + name
	}
	for status, candidate := range statusNames {
		if candidate == name {
			return status
		}
	}
	return StatusUnspecified
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON 同时兼容名称与数字两种编码
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*s = ParseStatus(name)
		return nil
	}
	var n int32
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = Status(n)
	if _, ok := statusNames[*s]; !ok {
		*s = StatusUnspecified
	}
	return nil
}
