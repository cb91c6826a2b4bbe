package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QueryInt đọc query param kiểu int; thiếu hoặc sai định dạng trả về def
func QueryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// ParamInt64 đọc path param kiểu int64
func ParamInt64(c *gin.Context, key string) (int64, error) {
	return strconv.ParseInt(c.Param(key), 10, 64)
}
