package handler

import (
	"CopilotHub/internal/api/dto"
	"CopilotHub/internal/pkg/consts"
	"CopilotHub/internal/pkg/response"
	"CopilotHub/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CopilotHandler struct {
	copilotSvc service.CopilotService
	ratingSvc  service.RatingService
}

func NewCopilotHandler(copilotSvc service.CopilotService, ratingSvc service.RatingService) *CopilotHandler {
	return &CopilotHandler{
		copilotSvc: copilotSvc,
		ratingSvc:  ratingSvc,
	}
}

// GetCopilot 作业详情
func (s *CopilotHandler) GetCopilot(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	info, err := s.copilotSvc.GetCopilot(c.Request.Context(), c.GetString(consts.ActorKey), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// QueryCopilots 作业列表
func (s *CopilotHandler) QueryCopilots(c *gin.Context) {
	var req dto.CopilotQueriesReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, err)
		return
	}

	page, err := s.copilotSvc.QueryCopilots(
		c.Request.Context(),
		c.GetString(consts.ActorKey),
		c.GetUint64(consts.UserIDKey),
		&req,
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

// RateCopilot 为作业评分，匿名用户以 IP 计
func (s *CopilotHandler) RateCopilot(c *gin.Context) {
	var req dto.CopilotRatingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.ratingSvc.RateCopilot(c.Request.Context(), c.GetString(consts.ActorKey), req.ID, req.Rating); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *CopilotHandler) UploadCopilot(c *gin.Context) {
	var req dto.CopilotCUDReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	id, err := s.copilotSvc.UploadCopilot(c.Request.Context(), c.GetUint64(consts.UserIDKey), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, strconv.FormatInt(id, 10))
}

func (s *CopilotHandler) UpdateCopilot(c *gin.Context) {
	var req dto.CopilotCUDReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if req.ID <= 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.copilotSvc.UpdateCopilot(c.Request.Context(), c.GetUint64(consts.UserIDKey), req.ID, req.Content); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *CopilotHandler) DeleteCopilot(c *gin.Context) {
	var req dto.CopilotCUDReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if req.ID <= 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.copilotSvc.DeleteCopilot(c.Request.Context(), c.GetUint64(consts.UserIDKey), req.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
