package dto

// CopilotContent 作业 JSON 内容中需要服务端处理的部分
type CopilotContent struct {
	StageName       string           `json:"stage_name" validate:"required"`
	MinimumRequired string           `json:"minimum_required,omitempty"`
	Doc             CopilotDoc       `json:"doc"`
	Opers           []CopilotOper    `json:"opers,omitempty" validate:"dive"`
	Groups          []CopilotGroup   `json:"groups,omitempty" validate:"dive"`
	Actions         []map[string]any `json:"actions,omitempty"`
}

type CopilotDoc struct {
	Title        string `json:"title" validate:"max=255"`
	TitleColor   string `json:"title_color,omitempty"`
	Details      string `json:"details,omitempty"`
	DetailsColor string `json:"details_color,omitempty"`
}

type CopilotOper struct {
	Name         string         `json:"name" validate:"required"`
	Skill        int            `json:"skill,omitempty"`
	SkillUsage   int            `json:"skill_usage,omitempty"`
	Requirements map[string]any `json:"requirements,omitempty"`
}

type CopilotGroup struct {
	Name  string        `json:"name"`
	Opers []CopilotOper `json:"opers,omitempty" validate:"dive"`
}
