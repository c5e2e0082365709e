package sanitation

import (
	"fmt"
	"time"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/go-co-op/gocron"
	"github.com/mitchellh/mapstructure"

	"haplo/api/models"
	pr "haplo/api/models/processing"
	esRepo "haplo/api/repositories/elasticsearch"
	"haplo/api/services"

	variantsService "haplo/api/services/variants"
)

type (
	SanitationService struct {
		Initialized       bool
		Es7Client         *es7.Client
		Config            *models.Config
		ProcessingService *services.ProcessingService
	}
)

func NewSanitationService(es *es7.Client, ps *services.ProcessingService, cfg *models.Config) *SanitationService {
	ss := &SanitationService{
		Initialized:       false,
		Es7Client:         es,
		Config:            cfg,
		ProcessingService: ps,
	}

	ss.Init()

	return ss
}

func (ss *SanitationService) Init() {
	// initialization if necessary
	if !ss.Initialized {
		// - spin up a go routine that will periodically
		//   run through a series of steps to ensure
		//   the system is "sanitary" ; i.e.
		//   - dropping finished process requests nobody polled for days
		//   - cleaning block-call documents whose process request
		//     no longer exists
		go func() {
			// setup cron job
			s := gocron.NewScheduler(time.UTC)

			// drop stale finished requests from the in-memory map
			s.Every(1).Days().At("03:00:00").Do(func() {
				fmt.Printf("[%s] - Running process request cleanup..\n", time.Now())

				staleIds := make([]string, 0)

				ss.ProcessingService.RequestMapMux.Lock()
				for id, request := range ss.ProcessingService.RequestMap {
					if request.State != pr.Done && request.State != pr.Error {
						continue
					}

					updatedAt, parseErr := time.Parse("2006-01-02 15:04:05.999999999 -0700 MST", request.UpdatedAt)
					if parseErr == nil && time.Since(updatedAt) < 7*24*time.Hour {
						continue
					}

					staleIds = append(staleIds, id)
				}
				for _, id := range staleIds {
					delete(ss.ProcessingService.RequestMap, id)
				}
				ss.ProcessingService.RequestMapMux.Unlock()

				ss.ProcessingService.RequestStatsMapMux.Lock()
				for _, id := range staleIds {
					delete(ss.ProcessingService.RequestStatsMap, id)
				}
				ss.ProcessingService.RequestStatsMapMux.Unlock()

				fmt.Printf("[%s] - Dropped %d stale process requests..\n", time.Now(), len(staleIds))
			})

			// clean block-call documents with non-existing requests
			if ss.Es7Client != nil && ss.Config.Elasticsearch.Enabled {
				s.Every(1).Days().At("04:00:00").Do(func() {
					fmt.Printf("[%s] - Running block-call documents cleanup..\n", time.Now())

					// - get all request IDs still known to the service
					liveRequestIds := make([]string, 0)

					ss.ProcessingService.RequestMapMux.RLock()
					for id := range ss.ProcessingService.RequestMap {
						liveRequestIds = append(liveRequestIds, id)
					}
					ss.ProcessingService.RequestMapMux.RUnlock()

					// - obtain distribution of request IDs across all block calls
					overview := variantsService.GetBlockCallsOverview(ss.Es7Client, ss.Config)
					if overview == nil {
						return
					}
					if overview["requestIDs"] == nil {
						return
					}

					indexedRequestIdCounts := map[string]interface{}{}
					mapstructure.Decode(overview["requestIDs"], &indexedRequestIdCounts)

					indexedRequestIds := make([]string, 0)
					for requestId := range indexedRequestIdCounts {
						// ignore document count set for each id

						// accumulate IDs found in the index
						indexedRequestIds = append(indexedRequestIds, requestId)
					}
					fmt.Printf("[%s] - Request IDs found across all block calls : %v..\n", time.Now(), indexedRequestIds)

					// obtain set-difference between indexed and live request IDs
					setDiff := setDifference(indexedRequestIds, liveRequestIds)
					fmt.Printf("[%s] - Orphaned request ID difference: %v..\n", time.Now(), setDiff)

					// delete block calls with request IDs found in this set difference
					for _, orphanedId := range setDiff {
						// fire and forget
						go func(_orphanedId string) {
							_, _ = esRepo.DeleteBlockCallsByRequestId(ss.Es7Client, ss.Config, _orphanedId)
						}(orphanedId)
					}
				})
			}

			// starts the scheduler in blocking mode, which blocks
			// the current execution path
			s.StartBlocking()
		}()

		ss.Initialized = true
		fmt.Println("Sanitation Service Initialized ..")
	}
}

func setDifference(a, b []string) (c []string) {
	m := make(map[string]bool)

	for _, item := range b {
		m[item] = true
	}

	for _, item := range a {
		if _, ok := m[item]; !ok {
			c = append(c, item)
		}
	}
	return
}
