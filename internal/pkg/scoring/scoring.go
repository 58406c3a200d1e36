package scoring

import (
	"CopilotHub/internal/pkg/rating"
	"math"
	"math/big"
	"time"
)

const week = 7 * 24 * time.Hour

// Rating 作业的好评率与评分等级
type Rating struct {
	Ratio float64
	Level int
}

// RatingRatio likes / (likes + dislikes)，按二进制精确值四舍五入保留一位小数
func RatingRatio(agg rating.Aggregate) float64 {
	total := agg.Total()
	if total <= 0 || agg.Likes <= 0 {
		return 0
	}
	raw := float64(agg.Likes) / float64(total)
	return roundHalfUp1(raw)
}

// RatingLevel 好评率以十分位表示
func RatingLevel(ratio float64) int {
	return int(math.Round(ratio * 10))
}

// Compute 同时计算好评率与等级
func Compute(agg rating.Aggregate) Rating {
	ratio := RatingRatio(agg)
	return Rating{Ratio: ratio, Level: RatingLevel(ratio)}
}

func roundHalfUp1(x float64) float64 {
	f := new(big.Float).SetPrec(256).SetFloat64(x)
	f.Mul(f, big.NewFloat(10))
	f.Add(f, big.NewFloat(0.5))
	i, _ := f.Int(nil)
	v, _ := new(big.Float).SetInt(i).Float64()
	return v / 10
}

// PastedWeeks 上传至今经过的整周数加一，最小为 1
func PastedWeeks(uploadTime, now time.Time) int64 {
	weeks := int64(now.Sub(uploadTime)/week) + 1
	if weeks < 1 {
		return 1
	}
	return weeks
}

// HotScore 基于时间衰减的热度值，window 为最近窗口期内的点赞/点踩数
func HotScore(uploadTime, now time.Time, views int64, window rating.Aggregate) float64 {
	pastedWeeks := PastedWeeks(uploadTime, now)
	base := 6 / math.Log(float64(pastedWeeks+1))

	ups := max(window.Likes, 1)
	downs := max(window.Dislikes, 0)
	greatRate := float64(ups) / float64(ups+downs)
	if ups+downs >= 5 && downs >= ups {
		base *= greatRate
	}

	s := greatRate * (float64(views) / 10) * math.Max(float64(ups+downs)/10, 1) / float64(pastedWeeks)
	return math.Log(math.Max(s, 1)) + s/1000 + base
}
