// Package metrics 把 Swarm 事件转换为 Prometheus 指标
//
// 指标注册在独立的 prometheus.Registry 上，可选地通过 HTTP /metrics 导出。
//
//	m := metrics.New()
//	for ev := range swarm.Events() {
//	    m.Observe(ev)
//	}
package metrics
