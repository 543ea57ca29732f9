package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/denisAlshanov/mediagrab/internal/utils"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags used by request models
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := v.RegisterValidation("mediaurl", validateMediaURL); err != nil {
				panic(fmt.Sprintf("register mediaurl validator: %v", err))
			}
		}
	})
}

func validateMediaURL(fl validator.FieldLevel) bool {
	return IsMediaURL(fl.Field().String())
}

// IsMediaURL reports whether raw is an absolute http(s) URL with a host
func IsMediaURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// bindError converts a ShouldBindJSON failure into the client facing error
func bindError(err error) *utils.AppError {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return utils.NewRequestTooLargeError()
	}

	if errors.Is(err, io.EOF) {
		return utils.NewMissingURLError()
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			if fe.Field() != "URL" {
				continue
			}
			if fe.Tag() == "required" {
				return utils.NewMissingURLError()
			}
			return utils.NewInvalidURLError()
		}
		return utils.NewValidationError("Invalid request", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return utils.NewValidationError("Invalid request body", nil)
}
