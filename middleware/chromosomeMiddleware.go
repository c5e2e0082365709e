package middleware

import (
	"net/http"

	"haplo/api/contexts"
	"haplo/api/models/constants/chromosome"

	"github.com/labstack/echo"
)

/*
	Echo middleware to ensure a valid `chromosome` HTTP query parameter was provided
*/
func MandateChromosomeAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gc := c.(*contexts.HaploContext)

		// check for chromosome query parameter
		chromQP := c.QueryParam("chromosome")
		if len(chromQP) == 0 {
			// if no chromosome was provided return an error
			return echo.NewHTTPError(http.StatusBadRequest, "Missing 'chromosome' query parameter for querying!")
		}

		// verify:
		if !chromosome.IsValidHumanChromosome(chromQP) {
			return echo.NewHTTPError(http.StatusBadRequest, "Please provide a valid 'chromosome' (1-22, X, Y, M)!")
		}

		gc.Chromosome = chromQP
		return next(gc)
	}
}

/*
	Echo middleware to validate a `chromosome` HTTP query parameter if one was provided
*/
func ValidateOptionalChromosomeAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gc := c.(*contexts.HaploContext)

		chromQP := c.QueryParam("chromosome")
		if len(chromQP) > 0 {
			if !chromosome.IsValidHumanChromosome(chromQP) {
				return echo.NewHTTPError(http.StatusBadRequest, "Please provide a valid 'chromosome' (1-22, X, Y, M)!")
			}
			gc.Chromosome = chromQP
		}

		return next(gc)
	}
}
