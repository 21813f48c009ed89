// Package ping 实现连接存活探测协议 /ipfs/ping/1.0.0
//
// 每条连接的两端各自运行一个发起循环：
//
//	Idle → 打开流、写入随机负载 → AwaitingEcho
//	     → 在截止时间前收到相同回显 → Success（记录 RTT）
//	     → 否则 → Failed{Timeout | Mismatch | IoError}
//	     → 发出 Event，等待 Interval 后回到 Idle
//
// 第一次探测在连接建立后立即发出。连续失败次数超过 MaxFailures 时
// 以 CloseLivenessExceeded 关闭连接并停止探测，一次成功会清零计数。
//
// 响应端原样回显入站流上的所有字节，直到对端关闭流。
package ping
