package mongo

import (
	"CopilotHub/internal/api/config"
	"CopilotHub/internal/pkg/logger"
	"context"
	"fmt"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const legacyPoolSize = 10

// InitMongo 连接旧版评分库；迁移完成后集合只剩已消费文档，连接池保持很小
func InitMongo(cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URL).
		SetMaxPoolSize(legacyPoolSize).
		SetMonitor(logger.NewMongoMonitor()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)

	// FindUnconsumed 与条件更新都按 copilotId + delete 过滤
	_, err = db.Collection(CopilotRatingCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "copilotId", Value: 1}, {Key: "delete", Value: 1}},
	})
	if err != nil {
		log.Warn("Failed to ensure copilot_rating index", "err", err)
	}

	log.Info("MongoDB initialized successfully", "db", cfg.Database)
	return db, nil
}
