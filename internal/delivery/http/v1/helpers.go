package v1

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"fursa-backend/internal/delivery/http/middleware"
	"fursa-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// idParam parses a positive integer path parameter. Anything else is a 404,
// matching what an unknown id would produce.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.NotFound("Not found."))
		return 0, false
	}
	return id, true
}

// currentUser returns the id placed in the context by the auth middleware.
func currentUser(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperror.Unauthorized("Authentication credentials were not provided."))
		return 0, false
	}
	return id, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// formFile returns the uploaded file for field, or nil when none was sent.
func formFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperror.BadRequest("Malformed multipart request")
	}
	return fh, nil
}

// formValue reports a text field only when it was submitted.
func formValue(c *gin.Context, field string) *string {
	v, ok := c.GetPostForm(field)
	if !ok {
		return nil
	}
	return &v
}
