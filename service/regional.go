package service

import (
	"net/http"

	"pyape/dao/model"
	"pyape/dao/query"
	"pyape/logutils"
	"pyape/orm"
	"pyape/response"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
)

const maxPageSize = 100

type RegionalService struct {
	db        *orm.DB
	regionals *query.RegionalDao
	vos       *query.ValueObjectDao
}

// NewRegionalService serves the regional and value object tables of bindKey.
func NewRegionalService(db *orm.DB, bindKey string) (*RegionalService, error) {
	regionals, err := query.NewRegionalDao(db, bindKey)
	if err != nil {
		return nil, err
	}
	vos, err := query.NewValueObjectDao(db, bindKey)
	if err != nil {
		return nil, err
	}
	return &RegionalService{db: db, regionals: regionals, vos: vos}, nil
}

func (s *RegionalService) Regionals() *query.RegionalDao { return s.regionals }

type RegionalURI struct {
	R int `uri:"r"`
}

type PageQuery struct {
	Page int `form:"page"`
	Size int `form:"size"`
}

type RegionalListQuery struct {
	PageQuery
	KindType *int16        `form:"kindtype"`
	RType    *model.RType  `form:"rtype"`
	Status   *model.Status `form:"status"`
}

type RegionalAddReq struct {
	R        *int16       `json:"r" binding:"required"`
	Name     string       `json:"name" binding:"required"`
	Value    *string      `json:"value"`
	KindType int16        `json:"kindtype"`
	Status   model.Status `json:"status"`
}

type RegionalEditReq struct {
	Name     *string       `json:"name"`
	Value    *string       `json:"value"`
	KindType *int16        `json:"kindtype"`
	Status   *model.Status `json:"status"`
}

type ValueObjectListQuery struct {
	PageQuery
	VOType *int16        `form:"votype"`
	Status *model.Status `form:"status"`
}

func (s *RegionalService) GetRegional(c *gin.Context) {
	var uri RegionalURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	reg, err := s.regionals.Get(c.Request.Context(), uri.R)
	if err != nil {
		s.regionalError(c, err)
		return
	}
	response.Success(c, reg)
}

func (s *RegionalService) ListRegional(c *gin.Context) {
	var req RegionalListQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	q := s.regionals.RegionalQuery(c.Request.Context(), query.RegionalFilter{
		KindType: req.KindType,
		RType:    req.RType,
		Status:   req.Status,
	})
	page, err := orm.Paginate[model.Regional](q, req.Page, req.Size, maxPageSize)
	if err != nil {
		response.Error(c, err.Error(), response.NotSpecified)
		return
	}
	response.Paged(c, response.NewPage(page.Items, page.Page, page.Size, page.Total, page.Pages()))
}

func (s *RegionalService) AllRegional(c *gin.Context) {
	var req RegionalListQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	rows, err := s.regionals.All(c.Request.Context(), query.RegionalFilter{
		KindType: req.KindType,
		RType:    req.RType,
		Status:   req.Status,
	})
	if err != nil {
		response.Error(c, err.Error(), response.NotSpecified)
		return
	}
	merged := make([]map[string]any, 0, len(rows))
	for i := range rows {
		m, err := rows[i].Merge()
		if err != nil {
			response.Error(c, err.Error(), response.InvalidValue)
			return
		}
		merged = append(merged, m)
	}
	response.Success(c, merged)
}

func (s *RegionalService) AddRegional(c *gin.Context) {
	var req RegionalAddReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	reg := &model.Regional{
		R:        *req.R,
		Name:     req.Name,
		Value:    req.Value,
		KindType: req.KindType,
		Status:   req.Status,
	}
	if err := s.regionals.Add(c.Request.Context(), reg); err != nil {
		s.regionalError(c, err)
		return
	}
	logutils.Log.WithField("r", reg.R).Info("regional added")
	response.Success(c, reg)
}

func (s *RegionalService) EditRegional(c *gin.Context) {
	var uri RegionalURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	var req RegionalEditReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	reg, err := s.regionals.Edit(c.Request.Context(), uri.R, query.RegionalEdit{
		Name:     req.Name,
		Value:    req.Value,
		KindType: req.KindType,
		Status:   req.Status,
	})
	if err != nil {
		s.regionalError(c, err)
		return
	}
	response.Success(c, reg)
}

func (s *RegionalService) DeleteRegional(c *gin.Context) {
	var uri RegionalURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	reg, err := s.regionals.Delete(c.Request.Context(), uri.R)
	if err != nil {
		s.regionalError(c, err)
		return
	}
	logutils.Log.WithField("r", reg.R).Info("regional deleted")
	response.Success(c, reg)
}

// ListValueObject pages the value objects of an enabled regional.
func (s *RegionalService) ListValueObject(c *gin.Context) {
	var uri RegionalURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	var req ValueObjectListQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	_, ok, err := s.regionals.CheckRegional(ctx, uri.R, true)
	if err != nil {
		response.Error(c, err.Error(), response.NotSpecified)
		return
	}
	if !ok {
		response.NotFoundError(c, "unknown regional", response.UnknownRegional)
		return
	}
	page, err := orm.Paginate[model.ValueObject](s.vos.Query(ctx, uri.R, req.VOType, req.Status), req.Page, req.Size, maxPageSize)
	if err != nil {
		response.Error(c, err.Error(), response.NotSpecified)
		return
	}
	items := make([]map[string]any, 0, len(page.Items))
	for i := range page.Items {
		m, err := page.Items[i].Merge()
		if err != nil {
			response.Error(c, err.Error(), response.InvalidValue)
			return
		}
		items = append(items, m)
	}
	response.Paged(c, response.NewPage(items, page.Page, page.Size, page.Total, page.Pages()))
}

func (s *RegionalService) regionalError(c *gin.Context, err error) {
	switch {
	case query.IsRegionalNotFound(err):
		response.NotFoundError(c, err.Error(), response.RegionalNotFound)
	case query.IsRegionalExists(err):
		response.HTTPError(c, http.StatusConflict, err.Error(), response.RegionalExists)
	case query.IsRegionalInUse(err):
		response.HTTPError(c, http.StatusForbidden, err.Error(), response.RegionalInUse)
	case isNotValid(err):
		response.HTTPError(c, http.StatusBadRequest, err.Error(), response.InvalidValue)
	default:
		logutils.Log.Error("regional: ", err)
		response.Error(c, err.Error(), response.NotSpecified)
	}
}

func RegisterRegional(group *gin.RouterGroup, s *RegionalService) {
	group.GET("/regional", s.ListRegional)
	group.GET("/regional/all", s.AllRegional)
	group.GET("/regional/:r", s.GetRegional)
	group.POST("/regional", s.AddRegional)
	group.PUT("/regional/:r", s.EditRegional)
	group.DELETE("/regional/:r", s.DeleteRegional)
	group.GET("/vo/:r", s.ListValueObject)
}

func isNotValid(err error) bool {
	return errors.Is(err, errors.NotValid)
}
