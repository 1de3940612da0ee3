package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetProgress(c *gin.Context) {
	customerID, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	view, err := s.projectSvc.GetProgress(c.Request.Context(), customerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) CheckTaskDeadlines(c *gin.Context) {
	report, err := s.projectSvc.CheckTaskDeadlines(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}
