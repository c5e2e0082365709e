package variants

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"haplo/api/contexts"
	"haplo/api/models/constants"
	s "haplo/api/models/constants/sort"
	"haplo/api/models/dtos"
	"haplo/api/models/indexes"
	pr "haplo/api/models/processing"
	"haplo/api/mvc"
	esRepo "haplo/api/repositories/elasticsearch"
	"haplo/api/services/processing"
	variantsService "haplo/api/services/variants"
	"haplo/api/utils"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/labstack/echo"
)

func ProcessingStats(c echo.Context) error {
	fmt.Printf("[%s] - ProcessingStats hit!\n", time.Now())
	processingService := c.(*contexts.HaploContext).ProcessingService

	if processingService.BulkIndexer == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{})
	}
	return c.JSON(http.StatusOK, processingService.BulkIndexer.Stats())
}

func GetBlockCallsOverview(c echo.Context) error {
	fmt.Printf("[%s] - GetBlockCallsOverview hit!\n", time.Now())

	es := c.(*contexts.HaploContext).Es7Client
	cfg := c.(*contexts.HaploContext).Config

	resultsMap := variantsService.GetBlockCallsOverview(es, cfg)

	return c.JSON(http.StatusOK, resultsMap)
}

func BlockCallsGetBySampleId(c echo.Context) error {
	fmt.Printf("[%s] - BlockCallsGetBySampleId hit!\n", time.Now())
	cfg := c.(*contexts.HaploContext).Config

	es, chromosome, lowerBound, upperBound, sampleId, gtType := mvc.RetrieveCommonElements(c)

	sizeQP := c.QueryParam("size")
	var (
		defaultSize = 100
		size        int
	)

	size = defaultSize
	if len(sizeQP) > 0 {
		parsedSize, sErr := strconv.Atoi(sizeQP)

		if sErr == nil && parsedSize != 0 {
			size = parsedSize
		}
	}

	sortByPosition := s.CastToSortDirection(c.QueryParam("sortByPosition"))

	docs, searchErr := esRepo.GetBlockCallDocumentsInPositionRange(cfg, es,
		chromosome, lowerBound, upperBound,
		sampleId, gtType,
		size, sortByPosition)
	if searchErr != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Something went wrong. Please contact the administrator!",
		})
	}

	queryResult := dtos.BlockCallQueryResult{
		QueryId:    fmt.Sprintf("sampleId:%s", sampleId),
		Chromosome: chromosome,
		Start:      lowerBound,
		End:        upperBound,
		Calls:      make([]indexes.BlockCall, 0),
	}

	// gather data from "hits"
	docsHits := docs["hits"].(map[string]interface{})["hits"]
	allDocHits := []map[string]interface{}{}
	mapstructure.Decode(docsHits, &allDocHits)

	// grab _source for each hit
	for _, r := range allDocHits {
		source := r["_source"].(map[string]interface{})

		// cast map[string]interface{} to struct
		var resultingDoc indexes.BlockCall
		mapstructure.Decode(source, &resultingDoc)

		// accumulate structs
		queryResult.Calls = append(queryResult.Calls, resultingDoc)
	}

	fmt.Printf("Found %d docs!\n", len(queryResult.Calls))

	respDTO := dtos.BlockCallGetResponse{
		Results: []dtos.BlockCallQueryResult{queryResult},
	}
	respDTO.Status = http.StatusOK
	respDTO.Message = "Success"

	return c.JSON(http.StatusOK, respDTO)
}

func BlockCallsCountBySampleId(c echo.Context) error {
	fmt.Printf("[%s] - BlockCallsCountBySampleId hit!\n", time.Now())
	cfg := c.(*contexts.HaploContext).Config

	es, chromosome, lowerBound, upperBound, sampleId, gtType := mvc.RetrieveCommonElements(c)

	docs, countErr := esRepo.CountBlockCallDocumentsInPositionRange(cfg, es,
		chromosome, lowerBound, upperBound,
		sampleId, gtType)
	if countErr != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Something went wrong. Please contact the administrator!",
		})
	}

	respDTO := dtos.BlockCallCountResponse{}
	respDTO.Status = http.StatusOK
	respDTO.Message = "Success"
	if count, ok := docs["count"].(float64); ok {
		respDTO.Count = int(count)
	}

	return c.JSON(http.StatusOK, respDTO)
}

// GetBlocksInRange serves the on-disk locus index : every finalized
// block whose extent overlaps the queried range.
func GetBlocksInRange(c echo.Context) error {
	fmt.Printf("[%s] - GetBlocksInRange hit!\n", time.Now())
	gc := c.(*contexts.HaploContext)

	locusIndex := gc.ProcessingService.LocusIndex
	if locusIndex == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "No locus index is configured!")
	}

	rows, queryErr := locusIndex.Query(gc.Chromosome, gc.LowerBound, gc.UpperBound)
	if queryErr != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Something went wrong. Please contact the administrator!",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"chromosome": gc.Chromosome,
		"start":      gc.LowerBound,
		"end":        gc.UpperBound,
		"blocks":     rows,
	})
}

func VariantsProcess(c echo.Context) error {
	fmt.Printf("[%s] - VariantsProcess hit!\n", time.Now())
	gc := c.(*contexts.HaploContext)
	cfg := gc.Config
	vcfPath := cfg.Api.VcfPath

	processingService := gc.ProcessingService

	// retrieve query parameters (comma separated)
	fileNames := strings.Split(c.QueryParam("fileNames"), ",")
	if len(fileNames[0]) == 0 {
		return c.JSON(http.StatusBadRequest, "{\"error\" : \"Missing 'fileNames' query parameter!\"}")
	}

	// Read all files and temporarily catalog all .vcf and .vcf.gz files
	var vcfFiles []string
	walkErr := filepath.Walk(vcfPath,
		func(absoluteFileName string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if absoluteFileName == vcfPath {
				// skip
				return nil
			}

			// keep track of relative path
			relativePathFileName := strings.ReplaceAll(absoluteFileName, vcfPath, "")

			// strip the leading '/' away
			relativePathFileName = strings.TrimPrefix(relativePathFileName, "/")

			// Filter only .vcf and .vcf.gz files
			if matched, _ := regexp.MatchString(`\.vcf(\.gz)?$`, relativePathFileName); matched {
				vcfFiles = append(vcfFiles, relativePathFileName)
			} else {
				fmt.Printf("Skipping %s\n", relativePathFileName)
			}
			return nil
		})
	if walkErr != nil {
		fmt.Println(walkErr)
	}

	// Locate fileName from request inside found files
	for _, fileName := range fileNames {
		if !utils.StringInSlice(fileName, vcfFiles) {
			return c.JSON(http.StatusBadRequest, "{\"error\" : \"file "+fileName+" not found! Aborted -- \"}")
		}
	}

	// -- buffering policy, validated by middleware
	policy := processing.BufferCount
	policyText := cfg.Processing.BufferPolicy
	if policyQP := c.QueryParam("policy"); len(policyQP) > 0 {
		policyText = policyQP
	}
	if len(policyText) > 0 {
		if parsedPolicy, castErr := processing.CastToBufferPolicy(policyText); castErr == nil {
			policy = parsedPolicy
		}
	}

	policyParam := cfg.Processing.BufferParam
	if policyParamQP := c.QueryParam("policyParam"); len(policyParamQP) > 0 {
		if parsedParam, ppErr := strconv.ParseInt(policyParamQP, 10, 64); ppErr == nil {
			policyParam = parsedParam
		}
	}
	if policyParam == 0 && policy == processing.BufferCount {
		policyParam = 100 // default run length
	}

	// -- optionally rewrite the finalized blocks as a VCF
	var (
		rewrite    bool = false // default
		rewriteErr error
	)
	rewriteQP := c.QueryParam("rewrite")
	if len(rewriteQP) > 0 {
		rewrite, rewriteErr = strconv.ParseBool(rewriteQP)
		if rewriteErr != nil {
			fmt.Printf("Error parsing rewrite: %s, [%s] - defaulting to 'false'\n", rewriteQP, rewriteErr)
			// defaults to false
		}
	}

	startTime := time.Now()
	fmt.Printf("Processing Start: %s\n", startTime)

	responseDtos := []pr.ProcessResponseDTO{}
	for _, fileName := range fileNames {

		// check if there is an already existing processing request state
		if processingService.FilenameAlreadyRunning(fileName) {
			responseDtos = append(responseDtos, pr.ProcessResponseDTO{
				Filename: fileName,
				State:    pr.Error,
				Message:  "File already being processed..",
			})
			continue
		}

		// if not, execute

		newRequestState := &pr.ProcessRequest{
			Id:        uuid.New(),
			Filename:  fileName,
			State:     pr.Queued,
			CreatedAt: fmt.Sprintf("%v", startTime),
		}
		processingService.RequestChan <- newRequestState

		responseDtos = append(responseDtos, pr.ProcessResponseDTO{
			Id:       newRequestState.Id,
			Filename: newRequestState.Filename,
			State:    newRequestState.State,
			Message:  "Successfully queued..",
		})

		go func(_fileName string, _newRequestState *pr.ProcessRequest, _policy constants.BufferPolicy, _policyParam int64) {

			// take a spot in the queue
			processingService.ConcurrentFileQueue <- true
			// free up a spot in the queue
			defer func() {
				<-processingService.ConcurrentFileQueue
			}()

			fmt.Printf("Begin running %s !\n", _fileName)

			var separator string
			if strings.HasPrefix(_fileName, "/") {
				separator = ""
			} else {
				separator = "/"
			}
			filePath := fmt.Sprintf("%s%s%s", vcfPath, separator, _fileName)

			outputPath := ""
			if rewrite {
				outputPath = fmt.Sprintf("%s.blocks.vcf.gz", filePath)
			}

			processingService.ProcessVcf(filePath, outputPath, _newRequestState, _policy, _policyParam)
		}(fileName, newRequestState, policy, policyParam)
	}

	return c.JSON(http.StatusOK, responseDtos)
}

func GetAllProcessRequests(c echo.Context) error {
	fmt.Printf("[%s] - GetAllProcessRequests hit!\n", time.Now())
	processingService := c.(*contexts.HaploContext).ProcessingService

	// transform map of id-to-processRequests to an array
	processingService.RequestMapMux.RLock()
	defer processingService.RequestMapMux.RUnlock()

	m := make([]*pr.ProcessRequest, 0, len(processingService.RequestMap))
	for _, val := range processingService.RequestMap {
		m = append(m, val)
	}
	return c.JSON(http.StatusOK, m)
}

func GetProcessRequestStats(c echo.Context) error {
	fmt.Printf("[%s] - GetProcessRequestStats hit!\n", time.Now())
	processingService := c.(*contexts.HaploContext).ProcessingService

	requestId := c.QueryParam("id")
	if len(requestId) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing 'id' query parameter for querying!")
	}

	stats, found := processingService.RequestStats(requestId)
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("No processing request found for id %s", requestId))
	}

	return c.JSON(http.StatusOK, stats.Overview())
}
