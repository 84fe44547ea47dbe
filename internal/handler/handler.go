// Package handler exposes the storage facade and its views over HTTP.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"vetlab/internal/auth"
	"vetlab/internal/repository"
	"vetlab/pkg/response"

	"github.com/gin-gonic/gin"
)

// statusOf maps service errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrDuplicateUsername),
		errors.Is(err, repository.ErrProgramManagerExists),
		errors.Is(err, repository.ErrDuplicateNumber),
		errors.Is(err, repository.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, repository.ErrParentNotFound),
		errors.Is(err, repository.ErrItemNotFound):
		return http.StatusNotFound
	case repository.IsValidation(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(status, response.Error(status, "Internal server error"))
		return
	}
	msg := repository.Message(err)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		msg = "اسم المستخدم أو كلمة المرور غير صحيحة"
	}
	c.JSON(status, response.Localized(status, err.Error(), msg))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}

func forbidden(c *gin.Context, perm string) {
	c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+perm+"'"))
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, what+" not found"))
}

// one writes a single record, or 404 when v is nil.
func one[T any](c *gin.Context, status int, v *T, err error, what string) {
	if err != nil {
		fail(c, err)
		return
	}
	if v == nil {
		notFound(c, what)
		return
	}
	c.JSON(status, response.Success(status, v))
}

// deleted writes the result of a delete: 404 when nothing was removed.
func deleted(c *gin.Context, ok bool, err error, what string) {
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		notFound(c, what)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
