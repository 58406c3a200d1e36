package mongo

import (
	"CopilotHub/internal/pkg/rating"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CopilotRatingCollection = "copilot_rating"

// CopilotRatingModel 旧版评分文档，数组形式嵌入全部用户评价
type CopilotRatingModel struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	CopilotID   int64              `bson:"copilotId"`
	RatingUsers []RatingUser       `bson:"ratingUsers"`
	RatingLevel int                `bson:"ratingLevel"`
	RatingRatio float64            `bson:"ratingRatio"`
	Delete      bool               `bson:"delete"`
}

type RatingUser struct {
	UserID   string    `bson:"userId"`
	Rating   string    `bson:"rating"`
	RateTime time.Time `bson:"rateTime"`
}

// ToBlob 转换为与存储无关的旧版评分
func (m *CopilotRatingModel) ToBlob() *rating.LegacyBlob {
	entries := make([]rating.Event, 0, len(m.RatingUsers))
	for _, u := range m.RatingUsers {
		entries = append(entries, rating.Event{
			UserID:   u.UserID,
			Rating:   rating.FromLegacy(u.Rating),
			RateTime: u.RateTime,
		})
	}
	return &rating.LegacyBlob{
		CopilotID:   m.CopilotID,
		Entries:     entries,
		RatingLevel: m.RatingLevel,
		RatingRatio: m.RatingRatio,
		Consumed:    m.Delete,
	}
}
