package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		RespondBadRequest(ctx, "Invalid request body", parseBindError(err, out))

		return false
	}

	return true
}

// parseBindError turns a bind or validation failure into field-level
// details named after the JSON keys. Request bodies here are flat objects,
// so a field name is always a single key.
func parseBindError(err error, out interface{}) interface{} {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, FieldError{
				Field:   jsonFieldName(out, fe.StructField()),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: validationMessage(fe.Tag(), fe.Param()),
			})
		}
		return gin.H{"fields": fields}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	// encoding/json already reports the JSON key here
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := strings.TrimSpace(typeErr.Field)
		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{{
				Field:   field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", typeErr.Type.String()),
			}},
		}
	}

	return gin.H{"reason": err.Error()}
}

// jsonFieldName maps a Go field of the request struct to its JSON key.
func jsonFieldName(out interface{}, goField string) string {
	t := reflect.TypeOf(out)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return goField
	}

	sf, ok := t.FieldByName(goField)
	if !ok {
		return goField
	}

	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return goField
	}
	return name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	case "trimmin":
		return "must be at least " + param + " characters, ignoring surrounding spaces"
	case "maxbytes":
		return "must be at most " + param + " bytes"
	case "imageref":
		return "must be an http(s) image URL (jpg, jpeg, png, gif, webp) or a data:image URI"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
