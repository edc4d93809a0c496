package validate

import (
	"errors"
	"regexp"

	"github.com/emonotate/emonotate/internal/pkg/randname"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var youtubeIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

func youtubeID(fl validator.FieldLevel) bool {
	return youtubeIDRe.MatchString(fl.Field().String())
}

func roomCode(fl validator.FieldLevel) bool {
	return randname.IsValid(fl.Field().String(), randname.RoomCodeLen)
}

// Register adds the "youtube_id" and "room_code" tags to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("youtube_id", youtubeID); err != nil {
		return err
	}
	return v.RegisterValidation("room_code", roomCode)
}

// RegisterGin installs the custom tags on gin's binding validator.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return Register(v)
}
