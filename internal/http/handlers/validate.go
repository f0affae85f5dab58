package handlers

import (
	"strconv"
	"sync"

	"github.com/geocoder89/blogspace/internal/domain/post"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Business rules run on their own validator, after the identity and
// ownership checks. Gin's binding only checks that the body decodes.
var (
	rulesOnce sync.Once
	rules     *validator.Validate
)

func businessValidator() *validator.Validate {
	rulesOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		_ = v.RegisterValidation("trimmin", func(fl validator.FieldLevel) bool {
			min, err := strconv.Atoi(fl.Param())
			if err != nil {
				return false
			}
			return post.TrimmedLen(fl.Field().String()) >= min
		})

		// blank clears the image, so it passes here
		_ = v.RegisterValidation("imageref", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return post.TrimmedLen(s) == 0 || post.ValidImageRef(s)
		})

		rules = v
	})

	return rules
}

// ValidateStruct applies the `validate` tags of out and answers 400 with the
// usual field error details when they fail.
func ValidateStruct(ctx *gin.Context, out interface{}) bool {
	if err := businessValidator().Struct(out); err != nil {
		RespondError(ctx, 400, "validation_failed", "Request failed validation", parseBindError(err, out))
		return false
	}
	return true
}
