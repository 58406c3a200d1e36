package es

import (
	"CopilotHub/internal/pkg/util"
	"context"
	"errors"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/goccy/go-json"
)

const (
	fuzzyLookupSize  = 1
	keywordQuerySize = 100
)

// StageRepo 关卡名模糊解析
type StageRepo interface {
	FindByLevelIDFuzzy(ctx context.Context, levelID string) (*StageES, error)
	QueryStageIDsByKeyword(ctx context.Context, keyword string) ([]string, error)
}

type StageRepoImpl struct {
	client *elasticsearch.TypedClient
}

func NewStageRepo(client *elasticsearch.TypedClient) StageRepo {
	return &StageRepoImpl{client: client}
}

// FindByLevelIDFuzzy 按 stage_id 精确、level_id 精确或前缀匹配，取得分最高的一个
func (s *StageRepoImpl) FindByLevelIDFuzzy(ctx context.Context, levelID string) (*StageES, error) {
	if levelID == "" {
		return nil, nil
	}

	query := &types.Query{
		Bool: &types.BoolQuery{
			Should: []types.Query{
				{Term: map[string]types.TermQuery{"stage_id": {Value: levelID, Boost: util.PtrFloat32(4.0)}}},
				{Term: map[string]types.TermQuery{"level_id": {Value: levelID, Boost: util.PtrFloat32(2.0)}}},
				{Prefix: map[string]types.PrefixQuery{"level_id": {Value: levelID}}},
			},
		},
	}

	req := s.client.Search().Index(StageIndex).Query(query).Size(fuzzyLookupSize)
	stages, err := s.executeSearch(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return nil, nil
	}
	return stages[0], nil
}

// QueryStageIDsByKeyword 关卡名、分类、编号的模糊检索
func (s *StageRepoImpl) QueryStageIDsByKeyword(ctx context.Context, keyword string) ([]string, error) {
	if keyword == "" {
		return nil, nil
	}

	query := &types.Query{
		Bool: &types.BoolQuery{
			Should: []types.Query{
				{Term: map[string]types.TermQuery{"stage_id": {Value: keyword, Boost: util.PtrFloat32(3.0)}}},
				{Prefix: map[string]types.PrefixQuery{"level_id": {Value: keyword, Boost: util.PtrFloat32(2.0)}}},
				{
					MultiMatch: &types.MultiMatchQuery{
						Query:     keyword,
						Fields:    []string{"name^2", "cat_two", "cat_three", "level_id"},
						Fuzziness: util.PtrStr("AUTO"),
					},
				},
			},
		},
	}

	req := s.client.Search().Index(StageIndex).Query(query).Size(keywordQuerySize)
	stages, err := s.executeSearch(ctx, req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(stages))
	for _, stage := range stages {
		if stage.StageID != "" {
			ids = append(ids, stage.StageID)
		}
	}
	return ids, nil
}

func (s *StageRepoImpl) executeSearch(ctx context.Context, req *search.Search) ([]*StageES, error) {
	resp, err := req.Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) && e.Status == NotFoundCode {
			return nil, nil
		}
		return nil, err
	}

	results := make([]*StageES, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var stage StageES
		if err = json.Unmarshal(hit.Source_, &stage); err != nil {
			continue
		}
		results = append(results, &stage)
	}
	return results, nil
}
