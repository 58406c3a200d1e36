package consts

const (
	// HomeCacheKey 首页列表缓存 home:{dimension}:{fingerprint}
	HomeCacheKey = "home:%s:%s"
	// HomeCacheIndexKey 维度下已缓存作业 ID 集合
	HomeCacheIndexKey = "home:%s:copilotIds"
	// HomeCachePattern 维度下全部缓存
	HomeCachePattern = "home:%s:*"
	ViewGuardKey     = "views:"
	CopilotIDSeqKey  = "copilot:id:seq"
)

const (
	CopilotMigrateLock = "lock:copilot:migrate:"
)
