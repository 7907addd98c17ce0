package service

import (
	"testing"
	"time"
)

func TestDailyQuotaAllowUntilLimit(t *testing.T) {
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	q := NewDailyQuota(3)
	q.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		if !q.Allow() {
			t.Fatalf("第 %d 次调用应在配额内", i+1)
		}
	}
	if q.Allow() {
		t.Error("超过配额后 Allow 应返回 false")
	}
	if got := q.Remaining(); got != 0 {
		t.Errorf("期望剩余配额 0，实际=%d", got)
	}
}

func TestDailyQuotaResetAfterWindow(t *testing.T) {
	current := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	q := NewDailyQuota(2)
	q.now = func() time.Time { return current }

	q.Allow()
	q.Allow()
	if q.Allow() {
		t.Fatal("窗口内超限应返回 false")
	}

	// 不足 24 小时不重置
	current = current.Add(23 * time.Hour)
	if q.Allow() {
		t.Error("窗口未满 24 小时不应重置")
	}

	// 满 24 小时后由调用自身触发重置，无后台定时器
	current = current.Add(2 * time.Hour)
	if !q.Allow() {
		t.Error("窗口翻转后 Allow 应恢复")
	}
	if got := q.Remaining(); got != 1 {
		t.Errorf("新窗口消耗一次后期望剩余 1，实际=%d", got)
	}
}

func TestDailyQuotaZeroLimit(t *testing.T) {
	q := NewDailyQuota(0)
	if q.Allow() {
		t.Error("配额为 0 时任何调用都应被拒绝")
	}
}
