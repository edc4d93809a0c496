package handler

import (
	"net/http"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/serializer"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/gin-gonic/gin"
)

type ValueTypeHandler struct {
	svc service.ValueTypeService
}

func NewValueTypeHandler(s service.ValueTypeService) *ValueTypeHandler {
	return &ValueTypeHandler{svc: s}
}

type CreateValueTypeReq struct {
	Title    string         `json:"title" binding:"required,max=256" example:"Arousal"`
	AxisType model.AxisType `json:"axis_type" binding:"required" enums:"1,2" example:"1"`
}

// CreateValueType godoc
//
//	@Summary		Create value type
//	@Description	axis_type 1 is bidirectional, 2 is monotonic.
//	@Tags			value_type
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.CreateValueTypeReq	true	"Value type"
//	@Success		201		{object}	serializer.Response{data=model.ValueType}
//	@Router			/valuetypes [post]
func (h *ValueTypeHandler) CreateValueType(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	req := CreateValueTypeReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	vt, err := h.svc.Create(c.Request.Context(), u.ID, req.Title, req.AxisType)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: vt})
}

// ListValueTypes godoc
//
//	@Summary		List value types
//	@Tags			value_type
//	@Produce		json
//	@Param			mine	query		boolean	false	"Only value types created by the caller"
//	@Success		200		{object}	serializer.Response{data=[]model.ValueType}
//	@Router			/valuetypes [get]
func (h *ValueTypeHandler) ListValueTypes(c *gin.Context) {
	var userID uint
	if c.Query("mine") == "true" {
		if u, ok := currentUser(c); ok {
			userID = u.ID
		}
	}
	items, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: items})
}

// GetValueType godoc
//
//	@Summary		Get value type
//	@Tags			value_type
//	@Produce		json
//	@Param			id	path		integer	true	"Value type id"
//	@Success		200	{object}	serializer.Response{data=model.ValueType}
//	@Router			/valuetypes/{id} [get]
func (h *ValueTypeHandler) GetValueType(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	vt, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: vt})
}

// DeleteValueType godoc
//
//	@Summary		Delete value type
//	@Tags			value_type
//	@Produce		json
//	@Param			id	path		integer	true	"Value type id"
//	@Success		200	{object}	serializer.Response{}
//	@Router			/valuetypes/{id} [delete]
func (h *ValueTypeHandler) DeleteValueType(c *gin.Context) {
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
	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}
