package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/serializer"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/emonotate/emonotate/internal/pkg/paging"
	"github.com/gin-gonic/gin"
)

// writeErr renders a service error with its HTTP status.
func writeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrCurveNotFound),
		errors.Is(err, service.ErrContentNotFound),
		errors.Is(err, service.ErrValueTypeNotFound),
		errors.Is(err, service.ErrQuestionaireNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("", err))
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrTooManyCurveIDs):
		c.JSON(http.StatusForbidden, serializer.ForbiddenErr(err.Error()))
	case errors.Is(err, service.ErrContentProtected),
		errors.Is(err, service.ErrCurveLocked),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrNameSpaceExhausted):
		c.JSON(http.StatusConflict, serializer.ConflictErr("", err))
	case errors.Is(err, service.ErrNoCurveIDs),
		errors.Is(err, service.ErrInvalidAxisType),
		errors.Is(err, service.ErrInvalidReference),
		errors.Is(err, paging.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}

func currentUser(c *gin.Context) (*model.EmailUser, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.EmailUser)
	return u, ok && u != nil
}

func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(id), nil
}

// parseIDList splits raw on sep. Blank items are skipped; any other
// non-numeric item is an error.
func parseIDList(raw, sep string) ([]uint, error) {
	var out []uint
	for _, part := range strings.Split(raw, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		out = append(out, uint(id))
	}
	return out, nil
}
