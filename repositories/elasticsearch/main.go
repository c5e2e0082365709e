package elasticsearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"haplo/api/models"
	c "haplo/api/models/constants"
	s "haplo/api/models/constants/sort"
	"haplo/api/models/indexes"
	"haplo/api/utils"

	"github.com/elastic/go-elasticsearch/v7"
)

const blockCallsIndex = "block-calls"

// CreateBlockCallsIndex sets up the index and its mapping ;
// a 400 from elasticsearch means it already exists.
func CreateBlockCallsIndex(cfg *models.Config, es *elasticsearch.Client) error {
	var buf bytes.Buffer
	body := map[string]interface{}{
		"mappings": indexes.BLOCK_CALL_INDEX_MAPPING,
	}
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		log.Fatalf("Error encoding index mapping: %s\n", err)
		return err
	}

	res, err := es.Indices.Create(
		blockCallsIndex,
		es.Indices.Create.WithContext(context.Background()),
		es.Indices.Create.WithBody(&buf),
	)
	if err != nil {
		fmt.Printf("Error creating index: %s\n", err)
		return err
	}
	defer res.Body.Close()

	if cfg.Debug {
		fmt.Println(res.String())
	}

	return nil
}

func GetBlockCallDocumentsInPositionRange(cfg *models.Config, es *elasticsearch.Client,
	chromosome string, lowerBound int64, upperBound int64,
	sampleId string, gtType string,
	size int, sortByPosition c.SortDirection) (map[string]interface{}, error) {

	// begin building the request body.
	mustMap := []map[string]interface{}{{
		"query_string": map[string]interface{}{
			"query": "chrom:" + chromosome,
		}},
	}

	// 'complexifying' the query
	matchMap := make(map[string]interface{})

	if sampleId != "" {
		matchMap["sampleId"] = map[string]interface{}{
			"query": sampleId,
		}
	}

	if gtType != "" {
		matchMap["gtType"] = map[string]interface{}{
			"query": gtType,
		}
	}

	rangeMapSlice := []map[string]interface{}{}

	if upperBound > 0 {
		rangeMapSlice = append(rangeMapSlice, map[string]interface{}{
			"range": map[string]interface{}{
				"pos": map[string]interface{}{
					"lte": upperBound,
				},
			},
		})
	}

	if lowerBound > 0 {
		rangeMapSlice = append(rangeMapSlice, map[string]interface{}{
			"range": map[string]interface{}{
				"end": map[string]interface{}{
					"gte": lowerBound,
				},
			},
		})
	}

	// append the match components to the must map
	if len(matchMap) > 0 {
		mustMap = append(mustMap, map[string]interface{}{
			"match": matchMap,
		})
	}

	// individually append each range component to the must map
	mustMap = append(mustMap, rangeMapSlice...)

	// overall query structure
	var buf bytes.Buffer
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{{
					"bool": map[string]interface{}{
						"must": mustMap,
					}},
				},
			},
		},
		"size": size,
	}

	// set up sorting ; default to ascending
	sortDirection := s.Ascending
	if sortByPosition == s.Descending {
		sortDirection = s.Descending
	}
	query["sort"] = map[string]string{
		"pos": string(sortDirection),
	}

	// encode the query
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		log.Fatalf("Error encoding query: %s\n", err)
		return nil, err
	}

	if cfg.Debug {
		// view the outbound elasticsearch query
		myString := string(buf.Bytes()[:])
		fmt.Println(myString)
	}

	fmt.Printf("Query Start: %s\n", time.Now())

	if cfg.Debug {
		http.DefaultTransport.(*http.Transport).TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	// Perform the search request.
	res, searchErr := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(blockCallsIndex),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
		es.Search.WithPretty(),
	)
	if searchErr != nil {
		fmt.Printf("Error getting response: %s\n", searchErr)
		return nil, searchErr
	}

	defer res.Body.Close()

	result, resultErr := decodeResponse(cfg, res.String())
	if resultErr != nil {
		return nil, resultErr
	}

	fmt.Printf("Query End: %s\n", time.Now())

	return result, nil
}

func CountBlockCallDocumentsInPositionRange(cfg *models.Config, es *elasticsearch.Client,
	chromosome string, lowerBound int64, upperBound int64,
	sampleId string, gtType string) (map[string]interface{}, error) {

	mustMap := []map[string]interface{}{{
		"query_string": map[string]interface{}{
			"query": "chrom:" + chromosome,
		}},
	}

	matchMap := make(map[string]interface{})

	if sampleId != "" {
		matchMap["sampleId"] = map[string]interface{}{
			"query": sampleId,
		}
	}

	if gtType != "" {
		matchMap["gtType"] = map[string]interface{}{
			"query": gtType,
		}
	}

	if len(matchMap) > 0 {
		mustMap = append(mustMap, map[string]interface{}{
			"match": matchMap,
		})
	}

	if upperBound > 0 {
		mustMap = append(mustMap, map[string]interface{}{
			"range": map[string]interface{}{
				"pos": map[string]interface{}{
					"lte": upperBound,
				},
			},
		})
	}

	if lowerBound > 0 {
		mustMap = append(mustMap, map[string]interface{}{
			"range": map[string]interface{}{
				"end": map[string]interface{}{
					"gte": lowerBound,
				},
			},
		})
	}

	var buf bytes.Buffer
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{{
					"bool": map[string]interface{}{
						"must": mustMap,
					}},
				},
			},
		},
	}

	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		log.Fatalf("Error encoding query: %s\n", err)
		return nil, err
	}

	if cfg.Debug {
		myString := string(buf.Bytes()[:])
		fmt.Println(myString)
	}

	fmt.Printf("Query Start: %s\n", time.Now())

	if cfg.Debug {
		http.DefaultTransport.(*http.Transport).TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	res, countErr := es.Count(
		es.Count.WithContext(context.Background()),
		es.Count.WithIndex(blockCallsIndex),
		es.Count.WithBody(&buf),
		es.Count.WithPretty(),
	)
	if countErr != nil {
		fmt.Printf("Error getting response: %s\n", countErr)
		return nil, countErr
	}

	defer res.Body.Close()

	result, resultErr := decodeResponse(cfg, res.String())
	if resultErr != nil {
		return nil, resultErr
	}

	fmt.Printf("Query End: %s\n", time.Now())

	return result, nil
}

func GetBlockCallsBucketsByKeyword(cfg *models.Config, es *elasticsearch.Client, keyword string) (map[string]interface{}, error) {

	// begin building the request body.
	var buf bytes.Buffer
	aggMap := map[string]interface{}{
		"size": "0",
		"aggs": map[string]interface{}{
			"items": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": keyword,
					"size":  "10000", // increases the number of buckets returned (default is 10)
				},
			},
		},
	}

	// encode the query
	if err := json.NewEncoder(&buf).Encode(aggMap); err != nil {
		log.Fatalf("Error encoding aggMap: %s\n", err)
		return nil, err
	}

	if cfg.Debug {
		// view the outbound elasticsearch query
		myString := string(buf.Bytes()[:])
		fmt.Println(myString)
	}

	if cfg.Debug {
		http.DefaultTransport.(*http.Transport).TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	// Perform the search request.
	res, searchErr := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(blockCallsIndex),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
		es.Search.WithPretty(),
	)
	if searchErr != nil {
		fmt.Printf("Error getting response: %s\n", searchErr)
		return nil, searchErr
	}

	defer res.Body.Close()

	result, resultErr := decodeResponse(cfg, res.String())
	if resultErr != nil {
		return nil, resultErr
	}

	fmt.Printf("Query End: %s\n", time.Now())

	return result, nil
}

// DeleteBlockCallsByRequestId removes every document produced by
// one processing request.
func DeleteBlockCallsByRequestId(es *elasticsearch.Client, cfg *models.Config, requestId string) (map[string]interface{}, error) {
	var buf bytes.Buffer
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"requestId": map[string]interface{}{
					"query": requestId,
				},
			},
		},
	}

	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		log.Fatalf("Error encoding query: %s\n", err)
		return nil, err
	}

	if cfg.Debug {
		myString := string(buf.Bytes()[:])
		fmt.Println(myString)
	}

	fmt.Printf("Deletion Start: %s\n", time.Now())

	if cfg.Debug {
		http.DefaultTransport.(*http.Transport).TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	res, deleteErr := es.DeleteByQuery(
		[]string{blockCallsIndex},
		bytes.NewReader(buf.Bytes()),
	)
	if deleteErr != nil {
		fmt.Printf("Error getting response: %s\n", deleteErr)
		return nil, deleteErr
	}

	defer res.Body.Close()

	result, resultErr := decodeResponse(cfg, res.String())
	if resultErr != nil {
		return nil, resultErr
	}

	fmt.Printf("Deletion End: %s\n", time.Now())

	return result, nil
}

// decodeResponse unwraps an elasticsearch response string.
// Known bug: the response comes back with a preceding '[200 OK] '
// which needs trimming before the JSON body can be unmarshalled.
func decodeResponse(cfg *models.Config, resultString string) (map[string]interface{}, error) {
	if cfg.Debug {
		fmt.Println(resultString)
	}

	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("failed to query elasticsearch : got '%s'", bracketString)
	}

	result := make(map[string]interface{})
	if umErr := json.Unmarshal([]byte(jsonBodyString), &result); umErr != nil {
		fmt.Printf("Error unmarshalling response: %s\n", umErr)
		return nil, umErr
	}

	return result, nil
}
