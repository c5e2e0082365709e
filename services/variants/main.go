package variantsService

import (
	"encoding/json"
	"fmt"
	"sync"

	"haplo/api/models"
	esRepo "haplo/api/repositories/elasticsearch"

	"github.com/Jeffail/gabs"
	"github.com/elastic/go-elasticsearch/v7"
)

type (
	VariantService struct {
		Config *models.Config
	}
)

func NewVariantService(cfg *models.Config) *VariantService {
	vs := &VariantService{
		Config: cfg,
	}

	return vs
}

// GetBlockCallsOverview gathers the distribution of indexed
// block-call documents along a few keyword dimensions.
func GetBlockCallsOverview(es *elasticsearch.Client, cfg *models.Config) map[string]interface{} {
	resultsMap := map[string]interface{}{}
	resultsMux := sync.RWMutex{}

	var wg sync.WaitGroup
	callGetBucketsByKeyword := func(key string, keyword string, _wg *sync.WaitGroup) {
		defer _wg.Done()

		results, bucketsError := esRepo.GetBlockCallsBucketsByKeyword(cfg, es, keyword)
		if bucketsError != nil {
			resultsMux.Lock()
			defer resultsMux.Unlock()

			resultsMap[key] = map[string]interface{}{
				"error": "Something went wrong. Please contact the administrator!",
			}
			return
		}

		// retrieve aggregations.items.buckets
		individualKeyMap := map[string]interface{}{}

		resultsJson, marshallErr := json.Marshal(results)
		if marshallErr != nil {
			fmt.Printf("Error marshalling buckets response: %s\n", marshallErr)
			return
		}

		jsonParsed, parseErr := gabs.ParseJSON(resultsJson)
		if parseErr != nil {
			fmt.Printf("Parsing error: %s\n", parseErr)
			return
		}

		buckets, bucketsOk := jsonParsed.Path("aggregations.items.buckets").Data().([]interface{})
		if bucketsOk {
			// push results bucket to the key map
			for _, bucket := range buckets {
				doc_key := fmt.Sprint(bucket.(map[string]interface{})["key"]) // ensure strings and numbers are expressed as strings
				doc_count := bucket.(map[string]interface{})["doc_count"]

				individualKeyMap[doc_key] = doc_count
			}
		}

		resultsMux.Lock()
		resultsMap[key] = individualKeyMap
		resultsMux.Unlock()
	}

	// get distribution of chromosomes
	wg.Add(1)
	go callGetBucketsByKeyword("chromosomes", "chrom.keyword", &wg)

	// get distribution of sample IDs
	wg.Add(1)
	go callGetBucketsByKeyword("sampleIDs", "sampleId.keyword", &wg)

	// get distribution of genotype classes
	wg.Add(1)
	go callGetBucketsByKeyword("gtTypes", "gtType.keyword", &wg)

	// get distribution of processing request IDs
	wg.Add(1)
	go callGetBucketsByKeyword("requestIDs", "requestId.keyword", &wg)

	wg.Wait()

	return resultsMap
}
