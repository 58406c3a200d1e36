package kafka

import (
	"CopilotHub/internal/pkg/cache"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

const copilotTable = "copilots"

// CopilotHandler 订阅 copilots 表变更，作业被删除时淘汰列表缓存
type CopilotHandler struct {
	listingCache cache.ListingCache
}

func NewCopilotHandler(listingCache cache.ListingCache) *CopilotHandler {
	return &CopilotHandler{listingCache: listingCache}
}

func (s *CopilotHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("copilot consumer setup")
	return nil
}

func (s *CopilotHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("copilot consumer cleanup")
	return nil
}

func (s *CopilotHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-copilot consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-copilot process batch error", "err", err)
		return err
	}
	log.Info("topic-copilot consume claim end")
	return nil
}

func (s *CopilotHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, copilotTable)
	if err != nil {
		return err
	}

	for _, id := range removedCopilots(canalMsg) {
		for _, dim := range cache.Dimensions {
			if _, err = s.listingCache.InvalidateIfPresent(ctx, dim, id); err != nil {
				return errors.Wrapf(err, "invalidate %s listing for copilot %d", dim, id)
			}
		}
		log.InfoContext(ctx, "copilot removed, listing cache checked", "copilot_id", id, "type", canalMsg.Type)
	}
	return nil
}

// removedCopilots 本条变更中被软删除或物理删除的作业
func removedCopilots(msg *CanalMessage) []int64 {
	ids := make([]int64, 0)
	for i, row := range msg.Data {
		switch msg.Type {
		case CanalDelete:
		case CanalUpdate:
			old := msg.OldRow(i)
			prev, changed := old["is_deleted"]
			if !changed || ToBool(prev) || !ToBool(row["is_deleted"]) {
				continue
			}
		default:
			continue
		}

		id, err := ToInt64(row["copilot_id"])
		if err != nil {
			log.Warn("copilot change without valid id", "type", msg.Type, "err", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
