package contexts

import (
	"haplo/api/models"
	"haplo/api/services"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/labstack/echo"
)

type (
	// "Helper" Context to pass into routes that need
	//  an elasticsearch client and other variables
	HaploContext struct {
		echo.Context
		Es7Client         *es7.Client
		Config            *models.Config
		ProcessingService *services.ProcessingService

		// set by query-parameter middleware
		Chromosome string
		LowerBound int64
		UpperBound int64
	}
)
