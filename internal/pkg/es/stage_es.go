package es

// StageES 关卡索引文档
type StageES struct {
	StageID  string `json:"stage_id"`
	LevelID  string `json:"level_id"`
	CatOne   string `json:"cat_one"`
	CatTwo   string `json:"cat_two"`
	CatThree string `json:"cat_three"`
	Name     string `json:"name"`
}
