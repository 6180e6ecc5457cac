package jobs

// 任务名称常量，便于统一管理与引用.
const (
	JobStagingSweep = "staging.sweep"
	JobOrphanScan   = "files.orphan_scan"
)

// Cron 表达式常量（可选，但推荐一并集中管理）.
const (
	CronStagingSweep = "*/15 * * * *"
	CronOrphanScan   = "30 3 * * *"
)
