package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/dentaflow-api/internal/apperrors"
	"github.com/harentsoaR/dentaflow-api/internal/middleware"
)

func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"success": false, "message": apperrors.PublicMessage(err)})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

// flexInt accepts both 42 and "42"; browsers often send ids as strings.
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("expected an integer, got %s", b)
	}
	*n = flexInt(v)
	return nil
}

// viewer is who is asking: the token's subject when a bearer token was sent,
// otherwise whatever the client claims in the query string.
type viewer struct {
	UserID        int64
	Name          string
	Role          string
	Authenticated bool
}

func viewerFrom(c *gin.Context) viewer {
	role, ok := c.Get(middleware.ContextUserRole)
	if !ok {
		return viewer{}
	}
	return viewer{
		UserID:        c.GetInt64(middleware.ContextUserID),
		Name:          c.GetString(middleware.ContextUserName),
		Role:          role.(string),
		Authenticated: true,
	}
}

// optional turns an empty string into nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
