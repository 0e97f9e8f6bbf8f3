package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/igestorphone/igestorphone-sub000/pkg/database"
)

// Health reports service and database health
func Health(c echo.Context) error {
	status := "ok"
	dbStatus := "ok"

	sqlDB, err := database.GetDB().DB()
	if err != nil || sqlDB.Ping() != nil {
		status = "degraded"
		dbStatus = "unreachable"
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":   status,
		"database": dbStatus,
	})
}
