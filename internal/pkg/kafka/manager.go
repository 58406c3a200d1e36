package kafka

import (
	"CopilotHub/internal/api/config"
	"CopilotHub/internal/pkg/cache"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	copilotConsumer sarama.ConsumerGroup
	copilotHandler  sarama.ConsumerGroupHandler
	copilotTopic    string
}

// NewConsumerManager 未启用 Kafka 时返回 nil
func NewConsumerManager(cfg *config.Config, listingCache cache.ListingCache) (*ConsumerManager, error) {
	if !cfg.Kafka.Enable {
		log.Info("kafka disabled, skip consumers")
		return nil, nil
	}
	saramaCfg := newSaramaConfig(cfg.Kafka)

	copilotConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaCopilotConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		copilotConsumer: copilotConsumer,
		copilotHandler:  NewCopilotHandler(listingCache),
		copilotTopic:    cfg.KafkaCopilotConsumer.Topic,
	}, nil
}

// Start 启动所有消费者，阻塞至 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context) error {
	go func() {
		for err := range m.copilotConsumer.Errors() {
			log.Error("copilot consumer error", "err", err)
		}
	}()

	go func() {
		log.Info("Copilot consumer started", "topic", m.copilotTopic)
		for {
			if err := m.copilotConsumer.Consume(ctx, []string{m.copilotTopic}, m.copilotHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.copilotConsumer.Close(); err != nil {
		log.Error("Failed to close copilot consumer", "err", err)
	}
	return nil
}
