package handler

import (
	"net/http"

	"github.com/emonotate/emonotate/internal/modules/serializer"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	svc  service.RequestService
	mail service.MailService
}

func NewRequestHandler(s service.RequestService, m service.MailService) *RequestHandler {
	return &RequestHandler{svc: s, mail: m}
}

type CreateRequestReq struct {
	Title          string `json:"title" binding:"required,max=128" example:"Emotion while watching"`
	Description    string `json:"description"`
	Intervals      int    `json:"intervals" binding:"omitempty,min=1" example:"1"`
	ContentID      uint   `json:"content_id" binding:"required"`
	ValueTypeID    uint   `json:"value_type_id" binding:"required"`
	QuestionaireID *uint  `json:"questionaire_id"`
}

// CreateRequest godoc
//
//	@Summary		Create request
//	@Description	Creates a study invitation with a fresh room code. Researchers and staff only.
//	@Tags			request
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.CreateRequestReq	true	"Request"
//	@Success		201		{object}	serializer.Response{data=model.Request}
//	@Router			/requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	owner, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	req := CreateRequestReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	r, err := h.svc.Create(c.Request.Context(), owner, service.CreateRequestInput{
		Title:          req.Title,
		Description:    req.Description,
		Intervals:      req.Intervals,
		ContentID:      req.ContentID,
		ValueTypeID:    req.ValueTypeID,
		QuestionaireID: req.QuestionaireID,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: r})
}

type ListRequestsReq struct {
	Limit         *int   `form:"limit" binding:"omitempty,min=0,max=200" example:"20"`
	Cursor        string `form:"cursor"`
	Participating bool   `form:"participating,default=false"`
}

// ListRequests godoc
//
//	@Summary		List requests
//	@Description	Requests owned by the caller, or with participating=true the requests the caller takes part in.
//	@Tags			request
//	@Produce		json
//	@Param			limit			query		integer	false	"Max 200"
//	@Param			cursor			query		string	false	"Cursor from the previous page"
//	@Param			participating	query		boolean	false	"List requests the caller participates in"
//	@Success		200				{object}	serializer.Response{data=service.ListRequestsOutput}
//	@Router			/requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	req := ListRequestsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if req.Participating {
		items, err := h.svc.ListParticipating(c.Request.Context(), u.ID)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, serializer.Response{Data: service.ListRequestsOutput{Items: items}})
		return
	}

	limit := 0
	if req.Limit != nil {
		limit = *req.Limit
	}
	out, err := h.svc.List(c.Request.Context(), service.ListRequestsInput{OwnerID: u.ID, Limit: limit, Cursor: req.Cursor})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetRequest godoc
//
//	@Summary		Get request
//	@Tags			request
//	@Produce		json
//	@Param			id	path		integer	true	"Request id"
//	@Success		200	{object}	serializer.Response{data=model.Request}
//	@Router			/requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	r, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: r})
}

type RoomNameUri struct {
	RoomName string `uri:"room_name" binding:"required,room_code"`
}

// GetRequestByRoom godoc
//
//	@Summary		Get request by room code
//	@Tags			request
//	@Produce		json
//	@Param			room_name	path		string	true	"Room code"
//	@Success		200			{object}	serializer.Response{data=model.Request}
//	@Router			/requests/room/{room_name} [get]
func (h *RequestHandler) GetRequestByRoom(c *gin.Context) {
	uri := RoomNameUri{}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	r, err := h.svc.GetByRoomName(c.Request.Context(), uri.RoomName)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: r})
}

type UpdateRequestReq struct {
	Title          *string `json:"title" binding:"omitempty,max=128"`
	Description    *string `json:"description"`
	Intervals      *int    `json:"intervals" binding:"omitempty,min=1"`
	QuestionaireID *uint   `json:"questionaire_id"`
}

// UpdateRequest godoc
//
//	@Summary		Update request
//	@Tags			request
//	@Accept			json
//	@Produce		json
//	@Param			id		path		integer						true	"Request id"
//	@Param			payload	body		handler.UpdateRequestReq	true	"Fields to change"
//	@Success		200		{object}	serializer.Response{data=model.Request}
//	@Router			/requests/{id} [put]
func (h *RequestHandler) UpdateRequest(c *gin.Context) {
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
	req := UpdateRequestReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	r, err := h.svc.Update(c.Request.Context(), actor, id, service.UpdateRequestInput{
		Title:          req.Title,
		Description:    req.Description,
		Intervals:      req.Intervals,
		QuestionaireID: req.QuestionaireID,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: r})
}

// DeleteRequest godoc
//
//	@Summary		Delete request
//	@Tags			request
//	@Produce		json
//	@Param			id	path		integer	true	"Request id"
//	@Success		200	{object}	serializer.Response{}
//	@Router			/requests/{id} [delete]
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
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

type AddParticipantsReq struct {
	UserIDs []uint `json:"user_ids" binding:"required,min=1,dive,gt=0"`
}

// AddParticipants godoc
//
//	@Summary		Add participants
//	@Description	Existing memberships are left untouched.
//	@Tags			request
//	@Accept			json
//	@Produce		json
//	@Param			id		path		integer						true	"Request id"
//	@Param			payload	body		handler.AddParticipantsReq	true	"User ids"
//	@Success		200		{object}	serializer.Response{data=map[string]int64}
//	@Router			/requests/{id}/participants [post]
func (h *RequestHandler) AddParticipants(c *gin.Context) {
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
	req := AddParticipantsReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	n, err := h.svc.AddParticipants(c.Request.Context(), actor, id, req.UserIDs)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"added": n}})
}

// ListParticipants godoc
//
//	@Summary		List participants
//	@Tags			request
//	@Produce		json
//	@Param			id	path		integer	true	"Request id"
//	@Success		200	{object}	serializer.Response{data=[]model.RelationParticipant}
//	@Router			/requests/{id}/participants [get]
func (h *RequestHandler) ListParticipants(c *gin.Context) {
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
	ps, err := h.svc.ListParticipants(c.Request.Context(), actor, id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: ps})
}

// SendMail godoc
//
//	@Summary		Mail participants
//	@Description	Sends one invitation per unique target and flags each delivered membership. Without targets every participant is mailed.
//	@Description	skipped counts targets that are not participants and participants whose address is still a placeholder (guests, or after an email reset); those memberships are never flagged.
//	@Description	Only the request owner or staff may send.
//	@Tags			request
//	@Produce		json
//	@Param			request_id	path		integer	true	"Request id"
//	@Param			targets		query		string	false	"Semicolon separated user ids"
//	@Success		200			{object}	serializer.Response{data=service.DispatchResult}
//	@Failure		403			{object}	serializer.Response
//	@Failure		404			{object}	serializer.Response
//	@Router			/send/{request_id} [get]
func (h *RequestHandler) SendMail(c *gin.Context) {
	id, err := pathID(c, "request_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	targets, err := parseIDList(c.Query("targets"), ";")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	actor, _ := currentUser(c)
	res, err := h.mail.Dispatch(c.Request.Context(), actor, id, targets)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: res})
}

// ResetEmails godoc
//
//	@Summary		Reset participant emails
//	@Description	Replaces every participant's address with its placeholder. Only the request owner or staff may reset.
//	@Tags			request
//	@Produce		json
//	@Param			request_id	path		integer	true	"Request id"
//	@Success		200			{object}	serializer.Response{data=map[string]int64}
//	@Failure		403			{object}	serializer.Response
//	@Failure		404			{object}	serializer.Response
//	@Router			/reset_email_addresses/{request_id} [get]
func (h *RequestHandler) ResetEmails(c *gin.Context) {
	id, err := pathID(c, "request_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	actor, _ := currentUser(c)
	n, err := h.mail.ResetEmails(c.Request.Context(), actor, id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"reset": n}})
}
