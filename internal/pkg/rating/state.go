package rating

// LegacyBlob 旧版嵌入在作业上的评分数组
type LegacyBlob struct {
	CopilotID   int64
	Entries     []Event
	RatingLevel int
	RatingRatio float64
	Consumed    bool
}

// Kind 作业评分数据所处的表示形式
type Kind int

const (
	// Normalized 仅存在逐用户评分记录
	Normalized Kind = iota
	// Legacy 存在未迁移的旧版数组
	Legacy
	// Migrated 旧版数组已迁移，不再参与计算
	Migrated
)

func (k Kind) String() string {
	switch k {
	case Legacy:
		return "legacy"
	case Migrated:
		return "migrated"
	default:
		return "normalized"
	}
}

// State 作业评分数据的带标签联合，仅 Legacy 时 Blob 有意义
type State struct {
	Kind Kind
	Blob *LegacyBlob
}

// Classify 根据旧版数组判定作业的评分表示
func Classify(blob *LegacyBlob) State {
	switch {
	case blob == nil:
		return State{Kind: Normalized}
	case blob.Consumed:
		return State{Kind: Migrated}
	default:
		return State{Kind: Legacy, Blob: blob}
	}
}

func (s State) NeedsMigration() bool {
	return s.Kind == Legacy && s.Blob != nil
}
