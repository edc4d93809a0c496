package handler

import (
	"net/http"

	"github.com/emonotate/emonotate/internal/modules/serializer"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/gin-gonic/gin"
)

type QuestionaireHandler struct {
	svc service.QuestionaireService
}

func NewQuestionaireHandler(s service.QuestionaireService) *QuestionaireHandler {
	return &QuestionaireHandler{svc: s}
}

type CreateQuestionaireReq struct {
	URL        string `json:"url" binding:"required,url,max=200" example:"https://docs.google.com/forms/d/e/xxx/viewform"`
	UserIDForm string `json:"user_id_form" binding:"required,max=32" example:"entry.123456"`
}

// CreateQuestionaire godoc
//
//	@Summary		Create questionnaire
//	@Description	user_id_form names the form field prefilled with the participant's username.
//	@Tags			questionaire
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.CreateQuestionaireReq	true	"Questionnaire"
//	@Success		201		{object}	serializer.Response{data=model.Questionaire}
//	@Router			/questionaires [post]
func (h *QuestionaireHandler) CreateQuestionaire(c *gin.Context) {
	req := CreateQuestionaireReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	q, err := h.svc.Create(c.Request.Context(), req.URL, req.UserIDForm)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: q})
}

// ListQuestionaires godoc
//
//	@Summary		List questionnaires
//	@Tags			questionaire
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=[]model.Questionaire}
//	@Router			/questionaires [get]
func (h *QuestionaireHandler) ListQuestionaires(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: items})
}

// GetQuestionaire godoc
//
//	@Summary		Get questionnaire
//	@Tags			questionaire
//	@Produce		json
//	@Param			id	path		integer	true	"Questionnaire id"
//	@Success		200	{object}	serializer.Response{data=model.Questionaire}
//	@Router			/questionaires/{id} [get]
func (h *QuestionaireHandler) GetQuestionaire(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	q, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: q})
}

// DeleteQuestionaire godoc
//
//	@Summary		Delete questionnaire
//	@Description	Requests referencing it keep existing with no questionnaire.
//	@Tags			questionaire
//	@Produce		json
//	@Param			id	path		integer	true	"Questionnaire id"
//	@Success		200	{object}	serializer.Response{}
//	@Router			/questionaires/{id} [delete]
func (h *QuestionaireHandler) DeleteQuestionaire(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}
