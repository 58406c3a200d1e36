package consts

const (
	// CopilotIDFloor 空库时首个作业 ID 为 CopilotIDFloor + 1
	CopilotIDFloor = 19999
)

const (
	RatingSubjectCopilot = "COPILOT"
)

const (
	RoleAdmin = "ADMIN"
)

const (
	UserIDKey = "user_id"
	RolesKey  = "roles"
	ActorKey  = "actor_key"
)
