package rating

import "time"

// Event 某个用户在某一时刻的评价
type Event struct {
	UserID   string
	Rating   Type
	RateTime time.Time
}

// Aggregate 点赞/点踩计数，只读
type Aggregate struct {
	Likes    int64
	Dislikes int64
}

func (a Aggregate) Total() int64 {
	return a.Likes + a.Dislikes
}

// Add 返回叠加 delta 后的新值
func (a Aggregate) Add(t Type, delta int64) Aggregate {
	switch t {
	case Like:
		a.Likes += delta
	case Dislike:
		a.Dislikes += delta
	}
	return a
}

// Clamp 负数截断为 0
func (a Aggregate) Clamp() Aggregate {
	return Aggregate{Likes: max(a.Likes, 0), Dislikes: max(a.Dislikes, 0)}
}

// Latest 每个用户只保留最新的一次评价，保持首次出现的顺序。
// rateTime 相同时后出现者覆盖前者。
func Latest(events []Event) []Event {
	index := make(map[string]int, len(events))
	out := make([]Event, 0, len(events))
	for _, e := range events {
		i, ok := index[e.UserID]
		if !ok {
			index[e.UserID] = len(out)
			out = append(out, e)
			continue
		}
		if !e.RateTime.Before(out[i].RateTime) {
			out[i] = e
		}
	}
	return out
}

// Tally 对评价序列做折叠，同一用户只计最新一次
func Tally(events []Event) Aggregate {
	var agg Aggregate
	for _, e := range Latest(events) {
		agg = agg.Add(e.Rating, 1)
	}
	return agg
}
