package handler

import (
	"net/http"

	"github.com/emonotate/emonotate/internal/modules/serializer"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{svc: s}
}

type UserView struct {
	ID          uint     `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	IsStaff     bool     `json:"is_staff"`
	Groups      []string `json:"groups"`
	Permissions []string `json:"permissions,omitempty"`
	NeedsEmail  bool     `json:"needs_email"`
}

// Me godoc
//
//	@Summary		Current user
//	@Tags			user
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=handler.UserView}
//	@Router			/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: UserView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsStaff:     u.IsStaff,
		Groups:      u.GroupNames(),
		Permissions: u.Permissions(),
		NeedsEmail:  h.svc.IsInvalidEmail(u.Email),
	}})
}

type ListUsersReq struct {
	Limit  *int   `form:"limit" json:"limit" binding:"omitempty,min=0,max=200" example:"20"`
	Cursor string `form:"cursor" json:"cursor"`
}

// ListUsers godoc
//
//	@Summary		List users
//	@Description	Staff only. If limit is not provided or 0, all users are returned.
//	@Tags			user
//	@Produce		json
//	@Param			limit	query	integer	false	"Max 200"
//	@Param			cursor	query	string	false	"Cursor from the previous page"
//	@Success		200		{object}	serializer.Response{data=service.ListUsersOutput}
//	@Router			/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	req := ListUsersReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	limit := 0
	if req.Limit != nil {
		limit = *req.Limit
	}

	out, err := h.svc.List(c.Request.Context(), service.ListUsersInput{Limit: limit, Cursor: req.Cursor})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetUser godoc
//
//	@Summary		Get user
//	@Tags			user
//	@Produce		json
//	@Param			id	path		integer	true	"User id"
//	@Success		200	{object}	serializer.Response{data=model.EmailUser}
//	@Router			/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	u, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: u})
}

type ChangeEmailReq struct {
	Email string `json:"email" binding:"required,email,max=256" example:"someone@example.com"`
}

// ChangeEmail godoc
//
//	@Summary		Change email
//	@Description	Replace a placeholder (or any) address. Users may change their own; staff anyone's.
//	@Tags			user
//	@Accept			json
//	@Produce		json
//	@Param			id		path		integer					true	"User id"
//	@Param			payload	body		handler.ChangeEmailReq	true	"New address"
//	@Success		200		{object}	serializer.Response{data=model.EmailUser}
//	@Router			/users/{id}/email [put]
func (h *UserHandler) ChangeEmail(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	req := ChangeEmailReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	u, err := h.svc.ChangeEmail(c.Request.Context(), actor, id, req.Email)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: u})
}
