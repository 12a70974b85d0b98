package ginutil

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QueryBool extracts a boolean query parameter ("1", "true", ...); invalid or missing values yield false
func QueryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return false
	}
	return v
}

// ParamUint extracts an unsigned id from path parameters
func ParamUint(c *gin.Context, key string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
