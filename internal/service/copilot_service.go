package service

import (
	"CopilotHub/internal/api/dto"
	"CopilotHub/internal/model"
	"CopilotHub/internal/pkg/cache"
	"CopilotHub/internal/pkg/es"
	"CopilotHub/internal/pkg/rating"
	"CopilotHub/internal/pkg/util"
	"CopilotHub/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	uploaderMe = "me"
	// notEnoughRatingLimit 评价数不超过该值时前端提示评价不足
	notEnoughRatingLimit = 5
	// maxListingPage 页码上限，保证 page*limit 不溢出
	maxListingPage = 100000
)

// orderColumns 排序字段白名单，其余一律按 copilot_id
var orderColumns = map[string]string{
	"hot":   "hot_score",
	"views": "views",
	"id":    "copilot_id",
}

type ListingOptions struct {
	DefaultLimit   int
	MaxLimit       int
	CacheablePages int
}

type CopilotService interface {
	GetCopilot(ctx context.Context, actorKey string, copilotID int64) (*dto.CopilotInfo, error)
	QueryCopilots(ctx context.Context, actorKey string, userID uint64, req *dto.CopilotQueriesReq) (*dto.CopilotPageInfo, error)
	RecordView(ctx context.Context, actorKey string, copilotID int64) (bool, error)
	UploadCopilot(ctx context.Context, userID uint64, content string) (int64, error)
	UpdateCopilot(ctx context.Context, userID uint64, copilotID int64, content string) error
	DeleteCopilot(ctx context.Context, userID uint64, copilotID int64) error
}

type copilotServiceImpl struct {
	copilotRepo   repository.CopilotRepo
	commentRepo   repository.CommentRepo
	userRepo      repository.UserRepo
	stageRepo     es.StageRepo
	ratingService RatingService
	migrator      LegacyRatingMigrator
	listingCache  cache.ListingCache
	viewGuard     cache.ViewGuard
	idAllocator   IDAllocator
	opts          ListingOptions
}

func NewCopilotService(
	copilotRepo repository.CopilotRepo,
	commentRepo repository.CommentRepo,
	userRepo repository.UserRepo,
	stageRepo es.StageRepo,
	ratingService RatingService,
	migrator LegacyRatingMigrator,
	listingCache cache.ListingCache,
	viewGuard cache.ViewGuard,
	idAllocator IDAllocator,
	opts ListingOptions,
) CopilotService {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 50
	}
	if opts.CacheablePages <= 0 {
		opts.CacheablePages = 3
	}
	return &copilotServiceImpl{
		copilotRepo:   copilotRepo,
		commentRepo:   commentRepo,
		userRepo:      userRepo,
		stageRepo:     stageRepo,
		ratingService: ratingService,
		migrator:      migrator,
		listingCache:  listingCache,
		viewGuard:     viewGuard,
		idAllocator:   idAllocator,
		opts:          opts,
	}
}

// GetCopilot 作业详情，会计入一次浏览
func (s *copilotServiceImpl) GetCopilot(ctx context.Context, actorKey string, copilotID int64) (*dto.CopilotInfo, error) {
	copilot, err := s.copilotRepo.GetActiveCopilot(ctx, copilotID)
	if err != nil {
		return nil, storeErr(err, "get copilot")
	}
	if copilot == nil {
		return nil, ErrCopilotNotFound
	}

	counted, err := s.RecordView(ctx, actorKey, copilotID)
	if err != nil {
		return nil, err
	}
	if counted {
		copilot.Views++
	}

	// 迁移锁被其他请求持有时按库中现值展示，迁移留给持锁方或下次访问
	res, err := s.migrator.Migrate(ctx, copilotID, nil)
	switch {
	case errors.Is(err, ErrMigrationBusy):
		log.WarnContext(ctx, "legacy rating migration in progress, serving stored counts", "copilot_id", copilotID)
	case err != nil:
		return nil, err
	case res.Migrated:
		copilot.LikeCount = res.Counts.Likes
		copilot.DislikeCount = res.Counts.Dislikes
		copilot.RatingLevel = res.RatingLevel
		copilot.RatingRatio = res.RatingRatio
	}

	var (
		usernames     map[uint64]string
		commentsCount int64
		userRating    rating.Type
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var e error
		usernames, e = s.userRepo.GetUsernames(gCtx, []uint64{copilot.UploaderID})
		return storeErr(e, "get uploader")
	})
	g.Go(func() error {
		var e error
		commentsCount, e = s.commentRepo.CountByCopilotID(gCtx, copilotID)
		return storeErr(e, "count comments")
	})
	g.Go(func() error {
		var e error
		userRating, e = s.ratingService.GetUserRating(gCtx, actorKey, copilotID)
		return e
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	info, err := s.buildInfo(copilot, usernames)
	if err != nil {
		return nil, err
	}
	info.Content = copilot.Content
	info.CommentsCount = commentsCount
	info.RatingType = userRating.Display()
	return info, nil
}

// RecordView 去重失败时不计数，计数写入失败则返回错误
func (s *copilotServiceImpl) RecordView(ctx context.Context, actorKey string, copilotID int64) (bool, error) {
	ok, err := s.viewGuard.ShouldCountView(ctx, actorKey, copilotID)
	if err != nil {
		log.WarnContext(ctx, "view guard unavailable, skip view count", "copilot_id", copilotID, "err", err)
		return false, nil
	}
	if !ok {
		return false, nil
	}
	if err = s.copilotRepo.IncrViews(ctx, copilotID); err != nil {
		return false, storeErr(err, "incr views")
	}
	return true, nil
}

// listingParams 参与缓存指纹计算的规范化参数
type listingParams struct {
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	OrderBy string `json:"order_by"`
	Desc    bool   `json:"desc"`
}

// QueryCopilots 作业列表，前几页的无过滤查询走缓存
func (s *copilotServiceImpl) QueryCopilots(ctx context.Context, actorKey string, userID uint64, req *dto.CopilotQueriesReq) (*dto.CopilotPageInfo, error) {
	params := listingParams{
		Page:    min(max(req.Page, 1), maxListingPage),
		Limit:   req.Limit,
		OrderBy: req.OrderBy,
		Desc:    req.Desc == nil || *req.Desc,
	}
	if params.Limit <= 0 {
		params.Limit = s.opts.DefaultLimit
	}
	params.Limit = min(params.Limit, s.opts.MaxLimit)

	var uploaderID *uint64
	switch req.UploaderID {
	case "":
	case uploaderMe:
		if userID == 0 {
			return nil, ErrLoginRequired
		}
		uploaderID = util.PtrUint64(userID)
	default:
		id, err := strconv.ParseUint(req.UploaderID, 10, 64)
		if err != nil {
			return nil, ErrParamInvalid
		}
		uploaderID = util.PtrUint64(id)
	}

	dim := cache.Dimension(params.OrderBy)
	_, allowed := cache.TTLOf(dim)
	cacheable := allowed &&
		params.Page <= s.opts.CacheablePages &&
		req.LevelKeyword == "" &&
		req.Operator == "" &&
		req.Document == "" &&
		uploaderID == nil

	var fingerprint string
	if cacheable {
		fp, err := cache.Fingerprint(params)
		if err != nil {
			log.WarnContext(ctx, "listing fingerprint failed", "err", err)
			cacheable = false
		} else {
			fingerprint = fp
			if page := s.readCachedPage(ctx, dim, fingerprint); page != nil {
				return page, s.overlayUserRatings(ctx, actorKey, page)
			}
		}
	}

	q := &repository.CopilotQuery{
		Document:   strings.TrimSpace(req.Document),
		UploaderID: uploaderID,
		Desc:       params.Desc,
		Offset:     (params.Page - 1) * params.Limit,
		Limit:      params.Limit,
	}
	q.OrderColumn = "copilot_id"
	if col, ok := orderColumns[params.OrderBy]; ok {
		q.OrderColumn = col
	}
	if kw := strings.TrimSpace(req.LevelKeyword); kw != "" {
		q.StageNames = s.resolveStageNames(ctx, kw)
		if len(q.StageNames) == 0 {
			q.StageKeyword = kw
		}
	}
	if req.Operator != "" {
		q.IncludeOpers, q.ExcludeOpers = util.SplitOperators(req.Operator)
	}

	copilots, total, err := s.copilotRepo.QueryCopilots(ctx, q)
	if err != nil {
		return nil, storeErr(err, "query copilots")
	}

	uploaderIDs := make([]uint64, 0, len(copilots))
	for _, c := range copilots {
		uploaderIDs = append(uploaderIDs, c.UploaderID)
	}
	usernames, err := s.userRepo.GetUsernames(ctx, uploaderIDs)
	if err != nil {
		return nil, storeErr(err, "get uploaders")
	}

	page := &dto.CopilotPageInfo{
		Total:     total,
		Page:      params.Page,
		PageCount: (total + int64(params.Limit) - 1) / int64(params.Limit),
		HasNext:   total-int64(params.Page*params.Limit) > 0,
		Data:      make([]*dto.CopilotInfo, 0, len(copilots)),
	}
	itemIDs := make([]int64, 0, len(copilots))
	for _, c := range copilots {
		info, err := s.buildInfo(c, usernames)
		if err != nil {
			return nil, err
		}
		page.Data = append(page.Data, info)
		itemIDs = append(itemIDs, c.CopilotID)
	}

	if cacheable {
		s.writeCachedPage(ctx, dim, fingerprint, page, itemIDs)
	}
	return page, s.overlayUserRatings(ctx, actorKey, page)
}

func (s *copilotServiceImpl) readCachedPage(ctx context.Context, dim cache.Dimension, fingerprint string) *dto.CopilotPageInfo {
	payload, hit, err := s.listingCache.Get(ctx, dim, fingerprint)
	if err != nil {
		log.WarnContext(ctx, "listing cache read failed, fallback to store", "dimension", dim, "err", err)
		return nil
	}
	if !hit {
		return nil
	}
	var page dto.CopilotPageInfo
	if err = json.Unmarshal(payload, &page); err != nil {
		log.WarnContext(ctx, "listing cache payload broken", "dimension", dim, "err", err)
		return nil
	}
	return &page
}

func (s *copilotServiceImpl) writeCachedPage(ctx context.Context, dim cache.Dimension, fingerprint string, page *dto.CopilotPageInfo, itemIDs []int64) {
	payload, err := json.Marshal(page)
	if err != nil {
		log.WarnContext(ctx, "marshal listing page failed", "err", err)
		return
	}
	if err = s.listingCache.Put(ctx, dim, fingerprint, payload, itemIDs); err != nil {
		log.WarnContext(ctx, "listing cache write failed", "dimension", dim, "err", err)
	}
}

// resolveStageNames 解析失败或无结果时返回空，由调用方回退到模糊匹配
func (s *copilotServiceImpl) resolveStageNames(ctx context.Context, keyword string) []string {
	ids, err := s.stageRepo.QueryStageIDsByKeyword(ctx, keyword)
	if err != nil {
		log.WarnContext(ctx, "stage resolver failed, fallback to like", "keyword", keyword, "err", err)
		return nil
	}
	return ids
}

func (s *copilotServiceImpl) overlayUserRatings(ctx context.Context, actorKey string, page *dto.CopilotPageInfo) error {
	if actorKey == "" || len(page.Data) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(page.Data))
	for _, item := range page.Data {
		ids = append(ids, item.ID)
	}
	ratings, err := s.ratingService.GetUserRatings(ctx, actorKey, ids)
	if err != nil {
		return err
	}
	for _, item := range page.Data {
		item.RatingType = ratings[item.ID].Display()
	}
	return nil
}

func (s *copilotServiceImpl) buildInfo(copilot *model.Copilot, usernames map[uint64]string) (*dto.CopilotInfo, error) {
	info := &dto.CopilotInfo{}
	if err := copier.Copy(info, copilot); err != nil {
		return nil, errors.Wrapf(err, "copy copilot %d", copilot.CopilotID)
	}
	info.ID = copilot.CopilotID
	info.Uploader = usernames[copilot.UploaderID]
	info.Opers = append([]string(nil), copilot.Opers...)
	info.Content = ""
	info.NotEnoughRating = copilot.LikeCount+copilot.DislikeCount <= notEnoughRatingLimit
	info.Available = !copilot.IsDeleted
	return info, nil
}

// UploadCopilot 上传作业，返回新分配的作业 ID
func (s *copilotServiceImpl) UploadCopilot(ctx context.Context, userID uint64, content string) (int64, error) {
	if userID == 0 {
		return 0, ErrLoginRequired
	}
	copilot, err := s.parseContent(ctx, content)
	if err != nil {
		return 0, err
	}

	id, err := s.idAllocator.Next(ctx)
	if err != nil {
		return 0, err
	}
	copilot.CopilotID = id
	copilot.UploaderID = userID
	copilot.UploadTime = time.Now()

	if err = s.copilotRepo.CreateCopilot(ctx, copilot); err != nil {
		return 0, storeErr(err, "create copilot")
	}
	log.InfoContext(ctx, "copilot uploaded", "copilot_id", id, "uploader_id", userID)
	return id, nil
}

func (s *copilotServiceImpl) UpdateCopilot(ctx context.Context, userID uint64, copilotID int64, content string) error {
	if _, err := s.ownedCopilot(ctx, userID, copilotID); err != nil {
		return err
	}
	copilot, err := s.parseContent(ctx, content)
	if err != nil {
		return err
	}
	copilot.CopilotID = copilotID

	if err = s.copilotRepo.UpdateContent(ctx, copilot); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCopilotNotFound
		}
		return storeErr(err, "update copilot")
	}
	return nil
}

// DeleteCopilot 软删除，随后淘汰包含该作业的列表缓存
func (s *copilotServiceImpl) DeleteCopilot(ctx context.Context, userID uint64, copilotID int64) error {
	if _, err := s.ownedCopilot(ctx, userID, copilotID); err != nil {
		return err
	}
	deleted, err := s.copilotRepo.SoftDelete(ctx, copilotID)
	if err != nil {
		return storeErr(err, "delete copilot")
	}
	if !deleted {
		return ErrCopilotNotFound
	}

	for _, dim := range cache.Dimensions {
		if _, err = s.listingCache.InvalidateIfPresent(ctx, dim, copilotID); err != nil {
			log.ErrorContext(ctx, "invalidate listing cache failed", "dimension", dim, "copilot_id", copilotID, "err", err)
		}
	}
	log.InfoContext(ctx, "copilot deleted", "copilot_id", copilotID, "user_id", userID)
	return nil
}

func (s *copilotServiceImpl) ownedCopilot(ctx context.Context, userID uint64, copilotID int64) (*model.Copilot, error) {
	if userID == 0 {
		return nil, ErrLoginRequired
	}
	copilot, err := s.copilotRepo.GetActiveCopilot(ctx, copilotID)
	if err != nil {
		return nil, storeErr(err, "get copilot")
	}
	if copilot == nil {
		return nil, ErrCopilotNotFound
	}
	if copilot.UploaderID != userID {
		return nil, ErrNotCopilotOwner
	}
	return copilot, nil
}

// parseContent 校验并规范化作业内容，关卡名尽量解析为标准 stage_id
func (s *copilotServiceImpl) parseContent(ctx context.Context, content string) (*model.Copilot, error) {
	var c dto.CopilotContent
	if err := json.Unmarshal([]byte(content), &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCopilotContentInvalid, err)
	}
	if err := util.ValidateDTO(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCopilotContentInvalid, err)
	}

	opers := make([]string, 0, len(c.Opers))
	for i := range c.Opers {
		c.Opers[i].Name = util.StripNameQuotes(c.Opers[i].Name)
		opers = append(opers, c.Opers[i].Name)
	}
	for i := range c.Groups {
		for j := range c.Groups[i].Opers {
			c.Groups[i].Opers[j].Name = util.StripNameQuotes(c.Groups[i].Opers[j].Name)
		}
	}
	for _, action := range c.Actions {
		if name, ok := action["name"].(string); ok {
			action["name"] = util.StripNameQuotes(name)
		}
	}

	stage, err := s.stageRepo.FindByLevelIDFuzzy(ctx, c.StageName)
	if err != nil {
		log.WarnContext(ctx, "resolve stage failed, keep input", "stage_name", c.StageName, "err", err)
	} else if stage != nil && stage.StageID != "" {
		c.StageName = stage.StageID
	}

	normalized, err := json.Marshal(&c)
	if err != nil {
		return nil, errors.Wrap(err, "marshal copilot content")
	}
	return &model.Copilot{
		Title:     c.Doc.Title,
		Details:   c.Doc.Details,
		StageName: c.StageName,
		Opers:     opers,
		Content:   string(normalized),
	}, nil
}
