package mvc

import (
	"haplo/api/contexts"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/labstack/echo"
)

func RetrieveCommonElements(c echo.Context) (*elasticsearch.Client, string, int64, int64, string, string) {
	gc := c.(*contexts.HaploContext)
	es := gc.Es7Client

	chromosome := gc.Chromosome

	lowerBound := gc.LowerBound
	upperBound := gc.UpperBound

	sampleId := c.QueryParam("id")
	gtType := c.QueryParam("gtType")

	return es, chromosome, lowerBound, upperBound, sampleId, gtType
}
