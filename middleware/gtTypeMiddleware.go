package middleware

import (
	"fmt"
	"net/http"

	"haplo/api/utils"

	"github.com/labstack/echo"
)

var knownGtTypes = []string{"NOCALL", "HEMI", "HOMREF", "HET", "HOMALT", "UNKNOWN"}

func ValidatePotentialGtTypeQueryParameter(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gtTypeQP := c.QueryParam("gtType")

		if len(gtTypeQP) > 0 && !utils.StringInSlice(gtTypeQP, knownGtTypes) {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid gtType query %s", gtTypeQP))
		}

		return next(c)
	}
}
