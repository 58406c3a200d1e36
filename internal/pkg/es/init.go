package es

import (
	"CopilotHub/internal/api/config"
	"CopilotHub/internal/pkg/logger"
	"context"
	"fmt"
	log "log/slog"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

var Client *elasticsearch.TypedClient

// StageIndex 关卡元数据索引，由关卡同步服务写入
var StageIndex string

const NotFoundCode = 404

// InitClient 连接 Elasticsearch 并确认关卡索引存在
func InitClient(cfg config.ElasticConfig) error {
	StageIndex = cfg.Indices.StageIndex

	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Addresses: []string{cfg.Address},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &logger.ESTransport{Transport: http.DefaultTransport},
	})
	if err != nil {
		return fmt.Errorf("create elasticsearch client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := client.Info().Do(ctx)
	if err != nil {
		return fmt.Errorf("connect elasticsearch: %w", err)
	}

	// 索引缺失时关卡解析退化为原样保存，不阻止启动
	exists, err := client.Indices.Exists(StageIndex).Do(ctx)
	if err != nil || !exists {
		log.Warn("Stage index unavailable, level names will be stored as submitted", "index", StageIndex, "err", err)
	}

	Client = client
	log.Info("Connected to Elasticsearch", "version", info.Version.Int, "stage_index", StageIndex)
	return nil
}
