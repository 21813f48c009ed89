package ping

import (
	"bytes"
	"fmt"
	"time"
)

// Phase 探测阶段
type Phase int

const (
	// Idle 等待下一次探测
	Idle Phase = iota
	// AwaitingEcho 负载已发出，等待回显
	AwaitingEcho
	// Success 上一次探测成功
	Success
	// Failed 上一次探测失败
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AwaitingEcho:
		return "awaiting-echo"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State 单条连接的探测状态，同一时刻最多一个探测在途
type State struct {
	Phase    Phase
	Payload  []byte
	SentAt   time.Time
	Deadline time.Time
	RTT      time.Duration
	Failures int
}

// begin 进入 AwaitingEcho
func (s *State) begin(payload []byte, now time.Time, timeout time.Duration) {
	s.Phase = AwaitingEcho
	s.Payload = payload
	s.SentAt = now
	s.Deadline = now.Add(timeout)
}

// finish 比对回显并结束本次探测
func (s *State) finish(echo []byte, now time.Time) (time.Duration, error) {
	if !bytes.Equal(echo, s.Payload) {
		return 0, s.fail(&Failure{Kind: Mismatch, Err: ErrPayloadMismatch})
	}
	rtt := now.Sub(s.SentAt)
	if rtt < 0 {
		rtt = 0
	}
	s.Phase = Success
	s.RTT = rtt
	s.Payload = nil
	s.Failures = 0
	return rtt, nil
}

// fail 记录一次失败
func (s *State) fail(f *Failure) error {
	s.Phase = Failed
	s.Payload = nil
	s.Failures++
	return f
}

// exceeded 连续失败是否超过上限
func (s *State) exceeded(max int) bool {
	return s.Failures > max
}
