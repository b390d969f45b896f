package service

import (
	"net/http"

	"pyape/dao/model"
	"pyape/dao/query"
	"pyape/logutils"
	"pyape/orm"
	"pyape/response"

	"github.com/gin-gonic/gin"
)

// UserService serves the per-regional user tables.
type UserService struct {
	users *query.UserDao
}

func NewUserService(users *query.UserDao) *UserService {
	return &UserService{users: users}
}

type UserURI struct {
	R   int `uri:"r"`
	UID int `uri:"uid" binding:"required"`
}

type UserAddReq struct {
	Nickname *string `json:"nickname"`
	HeadImg  *string `json:"headimg"`
	Note     *string `json:"note"`
}

func (s *UserService) GetUser(c *gin.Context) {
	var uri UserURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	u, err := s.users.Get(c.Request.Context(), uri.R, uri.UID)
	if err != nil {
		userError(c, err)
		return
	}
	response.Success(c, u)
}

func (s *UserService) AddUser(c *gin.Context) {
	var uri RegionalURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	var req UserAddReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	u := &model.User{Nickname: req.Nickname, HeadImg: req.HeadImg, Note: req.Note}
	if err := s.users.Add(c.Request.Context(), uri.R, u); err != nil {
		userError(c, err)
		return
	}
	response.Success(c, u)
}

func userError(c *gin.Context, err error) {
	switch {
	case orm.IsUnknownTenant(err):
		response.NotFoundError(c, err.Error(), response.UnknownRegional)
	case query.IsUserNotFound(err):
		response.NotFoundError(c, err.Error(), response.UserNotFound)
	default:
		logutils.Log.Error("user: ", err)
		response.HTTPError(c, http.StatusInternalServerError, err.Error(), response.NotSpecified)
	}
}

func RegisterUser(group *gin.RouterGroup, s *UserService) {
	group.GET("/user/:r/:uid", s.GetUser)
	group.POST("/user/:r", s.AddUser)
}
