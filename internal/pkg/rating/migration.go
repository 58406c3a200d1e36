package rating

import "time"

// Trigger 触发迁移的那次评分提交
type Trigger struct {
	UserID   string
	Rating   Type
	RateTime time.Time
}

// Plan 一次迁移需要写入的全部内容
type Plan struct {
	CopilotID int64
	Records   []Event
	Counts    Aggregate
	// RatingLevel/RatingRatio 沿用旧版预计算值
	RatingLevel int
	RatingRatio float64
	// TriggerApplied 触发者的新评价已体现在 Records 与 Counts 中
	TriggerApplied bool
}

// PlanMigration 将旧版数组转换为逐用户记录。
// trigger 不为空且与该用户旧评价不同时，在同一次计数里叠加差值。
func PlanMigration(blob LegacyBlob, trigger *Trigger) Plan {
	records := Latest(blob.Entries)
	counts := Tally(records)

	plan := Plan{
		CopilotID:   blob.CopilotID,
		RatingLevel: blob.RatingLevel,
		RatingRatio: blob.RatingRatio,
	}

	if trigger != nil {
		plan.TriggerApplied = true
		prev, at := None, -1
		for i, r := range records {
			if r.UserID == trigger.UserID {
				prev, at = r.Rating, i
				break
			}
		}
		if at < 0 || prev != trigger.Rating {
			counts = counts.Add(prev, -1).Add(trigger.Rating, 1)
			updated := Event{UserID: trigger.UserID, Rating: trigger.Rating, RateTime: trigger.RateTime}
			if at < 0 {
				records = append(records, updated)
			} else {
				records[at] = updated
			}
		}
	}

	plan.Records = records
	plan.Counts = counts.Clamp()
	return plan
}
