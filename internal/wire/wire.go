package wire

import (
	"CopilotHub/internal/api"
	"CopilotHub/internal/api/config"
	"CopilotHub/internal/api/handler"
	"CopilotHub/internal/job"
	"CopilotHub/internal/pkg/cache"
	"CopilotHub/internal/pkg/cron"
	"CopilotHub/internal/pkg/es"
	"CopilotHub/internal/pkg/kafka"
	legacy "CopilotHub/internal/pkg/mongo"
	"CopilotHub/internal/pkg/redis"
	"CopilotHub/internal/repository"
	"CopilotHub/internal/service"
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager
}

func BuildApplication(ctx context.Context, db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	copilotRepo := repository.NewCopilotRepo(db)
	ratingRepo := repository.NewRatingRepo(db)
	commentRepo := repository.NewCommentRepo(db)
	userRepo := repository.NewUserRepo(db)
	legacyRepo := legacy.NewCopilotRatingRepo(mongoDB)
	stageRepo := es.NewStageRepo(es.Client)

	listingCache := cache.NewListingCache(redis.Rdb)
	viewGuard := cache.NewViewGuard(redis.Rdb, cfg.Rating.ViewCooldown)

	idAllocator := service.NewIDAllocator(redis.Rdb, copilotRepo)
	if err := idAllocator.Init(ctx); err != nil {
		return nil, err
	}

	migrator := service.NewLegacyRatingMigrator(legacyRepo, ratingRepo, copilotRepo, redis.Rdb, service.MigratorOptions{
		LockTTL:   cfg.Rating.MigrateLockTTL,
		LockRetry: cfg.Rating.MigrateLockRetry,
	})
	ratingService := service.NewRatingService(ratingRepo, copilotRepo, migrator)
	copilotService := service.NewCopilotService(
		copilotRepo,
		commentRepo,
		userRepo,
		stageRepo,
		ratingService,
		migrator,
		listingCache,
		viewGuard,
		idAllocator,
		service.ListingOptions{
			DefaultLimit:   cfg.Listing.DefaultLimit,
			MaxLimit:       cfg.Listing.MaxLimit,
			CacheablePages: cfg.Rating.CacheablePages,
		},
	)

	scoreRefreshJob := job.NewScoreRefreshJob(copilotRepo, ratingRepo, migrator, listingCache, cfg.Rating.WindowDays)

	handlers := &api.HandlersGroup{
		CopilotHandler: handler.NewCopilotHandler(copilotService, ratingService),
		AdminHandler:   handler.NewAdminHandler(scoreRefreshJob),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, listingCache)
	if err != nil {
		return nil, err
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		CronMgr:      cron.NewCronManager(scoreRefreshJob, cfg.Cron.ScoreRefresh),
		KafkaManager: kafkaMgr,
	}, nil
}
