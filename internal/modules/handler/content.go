package handler

import (
	"net/http"

	"github.com/emonotate/emonotate/internal/modules/serializer"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	svc service.ContentService
}

func NewContentHandler(s service.ContentService) *ContentHandler {
	return &ContentHandler{svc: s}
}

type CreateContentReq struct {
	Title string `json:"title" binding:"required,max=256" example:"Lecture recording"`
	URL   string `json:"url" binding:"required,url,max=1024" example:"https://example.com/video.mp4"`
}

// CreateContent godoc
//
//	@Summary		Create content
//	@Tags			content
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.CreateContentReq	true	"Content"
//	@Success		201		{object}	serializer.Response{data=model.Content}
//	@Router			/contents [post]
func (h *ContentHandler) CreateContent(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	req := CreateContentReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	content, err := h.svc.Create(c.Request.Context(), u.ID, service.CreateContentInput{Title: req.Title, URL: req.URL})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: content})
}

// ListContents godoc
//
//	@Summary		List contents
//	@Tags			content
//	@Produce		json
//	@Param			mine	query		boolean	false	"Only contents created by the caller"
//	@Success		200		{object}	serializer.Response{data=[]model.Content}
//	@Router			/contents [get]
func (h *ContentHandler) ListContents(c *gin.Context) {
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

// GetContent godoc
//
//	@Summary		Get content
//	@Tags			content
//	@Produce		json
//	@Param			id	path		integer	true	"Content id"
//	@Success		200	{object}	serializer.Response{data=model.Content}
//	@Router			/contents/{id} [get]
func (h *ContentHandler) GetContent(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	content, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: content})
}

// DeleteContent godoc
//
//	@Summary		Delete content
//	@Description	Fails with 409 while any curve references the content.
//	@Tags			content
//	@Produce		json
//	@Param			id	path		integer	true	"Content id"
//	@Success		200	{object}	serializer.Response{}
//	@Failure		409	{object}	serializer.Response
//	@Router			/contents/{id} [delete]
func (h *ContentHandler) DeleteContent(c *gin.Context) {
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

type CreateYouTubeReq struct {
	VideoID string `json:"video_id" binding:"required,youtube_id" example:"dQw4w9WgXcQ"`
	Title   string `json:"title" binding:"max=256"`
}

// CreateYouTube godoc
//
//	@Summary		Register YouTube video
//	@Description	Idempotent by video id: an already registered video is returned with 200 instead of 201. The title is looked up when omitted.
//	@Tags			content
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.CreateYouTubeReq	true	"Video"
//	@Success		200		{object}	serializer.Response{data=model.YouTubeContent}
//	@Success		201		{object}	serializer.Response{data=model.YouTubeContent}
//	@Router			/youtube [post]
func (h *ContentHandler) CreateYouTube(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	req := CreateYouTubeReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	yt, created, err := h.svc.CreateYouTube(c.Request.Context(), u.ID, service.CreateYouTubeInput{VideoID: req.VideoID, Title: req.Title})
	if err != nil {
		writeErr(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, serializer.Response{Data: yt})
}

// ListYouTube godoc
//
//	@Summary		List YouTube videos
//	@Tags			content
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=[]model.YouTubeContent}
//	@Router			/youtube [get]
func (h *ContentHandler) ListYouTube(c *gin.Context) {
	items, err := h.svc.ListYouTube(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: items})
}
