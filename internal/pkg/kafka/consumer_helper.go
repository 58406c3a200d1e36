package kafka

import (
	"CopilotHub/internal/pkg/logger"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

const (
	batchSize    = 32
	batchTimeout = 1 * time.Second
)

var (
	ErrTableMismatch = errors.New("table name not match")
	ErrEmptyData     = errors.New("data is empty")
	ErrMalformed     = errors.New("malformed canal message")
)

// skippable 重试也无法成功的消息直接提交位点
func skippable(err error) bool {
	return errors.Is(err, ErrTableMismatch) || errors.Is(err, ErrEmptyData) || errors.Is(err, ErrMalformed)
}

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 拉取一批消息并执行业务逻辑
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				if len(batch) > 0 {
					processBatch(session, batch, logic)
				}
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				processBatch(session, batch, logic)
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				processBatch(session, batch, logic)
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

const (
	retryBase = 100 * time.Millisecond
	retryMax  = 5 * time.Second
)

func nextBackoff(d time.Duration) time.Duration {
	return min(d*2, retryMax)
}

// processBatch 并发处理一批消息，全部完成后同步提交最后一条的位点
func processBatch(session sarama.ConsumerGroupSession, messages []*sarama.ConsumerMessage, logic LogicFunc) {
	if len(messages) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, msg := range messages {
		wg.Add(1)
		go func(m *sarama.ConsumerMessage) {
			defer wg.Done()
			ctx := logger.WithTraceID(session.Context(), logger.NewTraceID(fmt.Sprintf("kafka-%s-%d-%d", m.Topic, m.Partition, m.Offset)))
			handleWithRetry(ctx, m, logic)
		}(msg)
	}
	wg.Wait()

	session.MarkMessage(messages[len(messages)-1], "")
	session.Commit()
}

// handleWithRetry 失败按指数退避重试，不可恢复的消息直接跳过
func handleWithRetry(ctx context.Context, m *sarama.ConsumerMessage, logic LogicFunc) {
	backoff := retryBase
	for {
		err := logic(ctx, m)
		if err == nil {
			return
		}
		if skippable(err) {
			log.DebugContext(ctx, "skip canal message", "topic", m.Topic, "offset", m.Offset, "reason", err)
			return
		}

		log.ErrorContext(ctx, "process message error", "topic", m.Topic, "offset", m.Offset, "retry_in", backoff, "err", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff)
	}
}

// ToCanalMessage 将kafka消息转换为canal消息结构体
func ToCanalMessage(msg *sarama.ConsumerMessage, tableName string) (*CanalMessage, error) {
	var canalMsg CanalMessage
	if err := json.Unmarshal(msg.Value, &canalMsg); err != nil {
		log.Error("unmarshal canal message error", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if canalMsg.Table != tableName {
		return nil, ErrTableMismatch
	}

	if len(canalMsg.Data) == 0 {
		return nil, ErrEmptyData
	}

	return &canalMsg, nil
}
