package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// CapacityRejections 因指导教师名额已满被拒绝的次数
	CapacityRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "capstone",
		Name:      "capacity_rejections_total",
		Help:      "Advisor attach/approve attempts rejected because the advisor is at capacity.",
	})

	// TeamsDeleted 团队删除次数
	TeamsDeleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "capstone",
		Name:      "teams_deleted_total",
		Help:      "Teams removed, by reason.",
	}, []string{"reason"})

	// ContinuationTeamsMoved 续接到新学期班级的团队数
	ContinuationTeamsMoved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "capstone",
		Name:      "continuation_teams_moved_total",
		Help:      "Teams moved into a PROJECT section by continuation.",
	})

	// ProjectTransitions 项目状态流转次数
	ProjectTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "capstone",
		Name:      "project_transitions_total",
		Help:      "Project status transitions.",
	}, []string{"from", "to"})
)

// Registry 业务指标注册表
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		CapacityRejections,
		TeamsDeleted,
		ContinuationTeamsMoved,
		ProjectTransitions,
		collectors.NewGoCollector(),
	)
}
