package handler

import (
	"errors"
	"net/http"

	"github.com/emonotate/emonotate/internal/modules/repo"
	"github.com/emonotate/emonotate/internal/modules/serializer"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type CurveHandler struct {
	svc    service.CurveService
	export service.ExportService
}

func NewCurveHandler(s service.CurveService, e service.ExportService) *CurveHandler {
	return &CurveHandler{svc: s, export: e}
}

type CreateCurveReq struct {
	ContentID   uint           `json:"content_id" binding:"required"`
	ValueTypeID uint           `json:"value_type_id" binding:"required"`
	Values      datatypes.JSON `json:"values" binding:"required" swaggertype:"object"`
	Version     string         `json:"version" binding:"max=16" example:"1.0.0"`
	RoomName    string         `json:"room_name" binding:"omitempty,room_code" example:"AbC123"`
	Locked      *bool          `json:"locked"`
}

// CreateCurve godoc
//
//	@Summary		Submit curve
//	@Tags			curve
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.CreateCurveReq	true	"Curve"
//	@Success		201		{object}	serializer.Response{data=model.Curve}
//	@Router			/curves [post]
func (h *CurveHandler) CreateCurve(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	req := CreateCurveReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	curve, err := h.svc.Create(c.Request.Context(), u.ID, service.CreateCurveInput{
		ContentID:   req.ContentID,
		ValueTypeID: req.ValueTypeID,
		Values:      req.Values,
		Version:     req.Version,
		RoomName:    req.RoomName,
		Locked:      req.Locked,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: curve})
}

type ListCurvesReq struct {
	Limit     *int   `form:"limit" binding:"omitempty,min=0,max=200" example:"20"`
	Cursor    string `form:"cursor"`
	ContentID uint   `form:"content_id"`
	RoomName  string `form:"room_name" binding:"omitempty,room_code"`
	All       bool   `form:"all,default=false"`
}

// ListCurves godoc
//
//	@Summary		List curves
//	@Description	The caller's curves. Staff may pass all=true to list everyone's.
//	@Tags			curve
//	@Produce		json
//	@Param			limit		query		integer	false	"Max 200"
//	@Param			cursor		query		string	false	"Cursor from the previous page"
//	@Param			content_id	query		integer	false	"Filter by content"
//	@Param			room_name	query		string	false	"Filter by room code"
//	@Param			all			query		boolean	false	"Staff only: every user's curves"
//	@Success		200			{object}	serializer.Response{data=service.ListCurvesOutput}
//	@Router			/curves [get]
func (h *CurveHandler) ListCurves(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	req := ListCurvesReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	filter := repo.CurveFilter{UserID: u.ID, ContentID: req.ContentID, RoomName: req.RoomName}
	if req.All && u.IsStaff {
		filter.UserID = 0
	}
	limit := 0
	if req.Limit != nil {
		limit = *req.Limit
	}

	out, err := h.svc.List(c.Request.Context(), service.ListCurvesInput{Filter: filter, Limit: limit, Cursor: req.Cursor})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetCurve godoc
//
//	@Summary		Get curve
//	@Tags			curve
//	@Produce		json
//	@Param			id	path		integer	true	"Curve id"
//	@Success		200	{object}	serializer.Response{data=model.Curve}
//	@Router			/curves/{id} [get]
func (h *CurveHandler) GetCurve(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	curve, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: curve})
}

type UpdateCurveReq struct {
	Values  datatypes.JSON `json:"values" binding:"required" swaggertype:"object"`
	Version string         `json:"version" binding:"max=16"`
}

// UpdateCurve godoc
//
//	@Summary		Update curve values
//	@Description	Only unlocked curves can be rewritten.
//	@Tags			curve
//	@Accept			json
//	@Produce		json
//	@Param			id		path		integer					true	"Curve id"
//	@Param			payload	body		handler.UpdateCurveReq	true	"Values"
//	@Success		200		{object}	serializer.Response{data=model.Curve}
//	@Router			/curves/{id} [put]
func (h *CurveHandler) UpdateCurve(c *gin.Context) {
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
	req := UpdateCurveReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	curve, err := h.svc.UpdateValues(c.Request.Context(), actor, id, req.Values, req.Version)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: curve})
}

type LockCurveReq struct {
	Locked *bool `json:"locked" binding:"required"`
}

// LockCurve godoc
//
//	@Summary		Lock or unlock curve
//	@Tags			curve
//	@Accept			json
//	@Produce		json
//	@Param			id		path		integer				true	"Curve id"
//	@Param			payload	body		handler.LockCurveReq	true	"Lock state"
//	@Success		200		{object}	serializer.Response{data=model.Curve}
//	@Router			/curves/{id}/lock [put]
func (h *CurveHandler) LockCurve(c *gin.Context) {
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
	req := LockCurveReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	curve, err := h.svc.SetLocked(c.Request.Context(), actor, id, *req.Locked)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: curve})
}

// DeleteCurve godoc
//
//	@Summary		Delete curve
//	@Tags			curve
//	@Produce		json
//	@Param			id	path		integer	true	"Curve id"
//	@Success		200	{object}	serializer.Response{}
//	@Router			/curves/{id} [delete]
func (h *CurveHandler) DeleteCurve(c *gin.Context) {
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

type DownloadURL struct {
	URL string `json:"url" example:"https://bucket.s3.amazonaws.com/exports/AbC123/2024/01/01/x.zip?X-Amz-Signature=..."`
}

// DownloadByRequest godoc
//
//	@Summary		Export a request's curves
//	@Description	Packages every curve recorded under the request's room code and returns a presigned download URL.
//	@Description	An unknown request is 404 for every caller; otherwise only the owner, a participant or staff may export.
//	@Tags			export
//	@Produce		json
//	@Param			request_id	path		integer	true	"Request id"
//	@Success		200			{object}	handler.DownloadURL
//	@Failure		403			{object}	serializer.Response
//	@Failure		404			{object}	serializer.Response
//	@Router			/get_download_curve_data/{request_id} [get]
func (h *CurveHandler) DownloadByRequest(c *gin.Context) {
	id, err := pathID(c, "request_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	actor, _ := currentUser(c)
	out, err := h.export.ExportRequest(c.Request.Context(), actor, id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, DownloadURL{URL: out.URL})
}

// DownloadByIDs godoc
//
//	@Summary		Export curves by id
//	@Description	Logged-in users may export at most 10 curves per call.
//	@Tags			export
//	@Produce		json
//	@Param			ids	query		string	true	"Comma separated curve ids"
//	@Success		200	{object}	handler.DownloadURL
//	@Failure		403	{object}	serializer.Response
//	@Router			/download_curve_data/ [get]
func (h *CurveHandler) DownloadByIDs(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		c.JSON(http.StatusForbidden, serializer.ForbiddenErr("login required"))
		return
	}
	ids, err := parseIDList(c.Query("ids"), ",")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", errors.New("ids is required")))
		return
	}

	out, err := h.export.ExportCurves(c.Request.Context(), ids)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, DownloadURL{URL: out.URL})
}
