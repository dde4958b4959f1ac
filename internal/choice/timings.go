package choice

import "time"

// Timings 选择处理器的计时参数
type Timings struct {
	BidTimeout      time.Duration // 无人加价多久后结束竞价
	BidResultsDelay time.Duration // 竞价结束到结算之间的展示时间
	RPSCountdown    time.Duration // 全员出招后的倒计时
	RPSResultsDelay time.Duration // 猜拳结果展示时间
}

// DefaultTimings 线上计时
func DefaultTimings() Timings {
	return Timings{
		BidTimeout:      7 * time.Second,
		BidResultsDelay: 5 * time.Second,
		RPSCountdown:    6 * time.Second,
		RPSResultsDelay: 5 * time.Second,
	}
}

// TestTimings 测试计时
func TestTimings() Timings {
	return Timings{
		BidTimeout:      100 * time.Millisecond,
		BidResultsDelay: 10 * time.Millisecond,
		RPSCountdown:    10 * time.Millisecond,
		RPSResultsDelay: 10 * time.Millisecond,
	}
}
