package middleware

import (
	"fmt"
	"net/http"

	"haplo/api/services/processing"

	"github.com/labstack/echo"
)

/*
	Echo middleware to validate an optional `policy` HTTP query parameter
	against the known buffering policies before a processing run starts
*/
func ValidatePotentialBufferPolicyParameter(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		policyQP := c.QueryParam("policy")

		if len(policyQP) > 0 {
			if _, castErr := processing.CastToBufferPolicy(policyQP); castErr != nil {
				return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid buffering policy %s", policyQP))
			}
		}

		return next(c)
	}
}
