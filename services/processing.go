package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"haplo/api/models"
	"haplo/api/models/constants"
	"haplo/api/models/indexes"
	pr "haplo/api/models/processing"
	"haplo/api/models/processing/structs"
	"haplo/api/models/variants"
	"haplo/api/repositories/locus"
	"haplo/api/services/processing"
	"haplo/api/services/statistics"
	"haplo/api/services/vcf"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esutil"
	"golang.org/x/sync/errgroup"
)

type (
	ProcessingService struct {
		Initialized            bool
		Config                 *models.Config
		RequestChan            chan *pr.ProcessRequest
		RequestMap             map[string]*pr.ProcessRequest
		RequestMapMux          sync.RWMutex
		RequestStatsMap        map[string]*statistics.Statistics
		RequestStatsMapMux     sync.RWMutex
		BulkIndexingCapacity   int
		BulkIndexingQueue      chan *structs.BlockCallQueueStructure
		BulkIndexer            esutil.BulkIndexer
		ConcurrentFileQueue    chan bool
		ElasticsearchClient    *elasticsearch.Client
		LocusIndex             *locus.Index
	}
)

func NewProcessingService(es *elasticsearch.Client, cfg *models.Config) *ProcessingService {

	ps := &ProcessingService{
		Initialized:          false,
		Config:               cfg,
		RequestChan:          make(chan *pr.ProcessRequest),
		RequestMap:           map[string]*pr.ProcessRequest{},
		RequestMapMux:        sync.RWMutex{},
		RequestStatsMap:      map[string]*statistics.Statistics{},
		RequestStatsMapMux:   sync.RWMutex{},
		BulkIndexingCapacity: 1000,
		BulkIndexingQueue:    make(chan *structs.BlockCallQueueStructure, 1000),
		ConcurrentFileQueue:  make(chan bool, 2),
		ElasticsearchClient:  es,
	}

	if es != nil {
		//see: https://www.elastic.co/blog/why-am-i-seeing-bulk-rejections-in-my-elasticsearch-cluster
		var numWorkers = ps.BulkIndexingCapacity / 100
		//the lower the denominator (the number of documents per bulk upload). the higher
		//the chances of 100% successful upload, though the longer it may take (negligible)

		bi, _ := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
			Index:      "block-calls",
			Client:     ps.ElasticsearchClient,
			NumWorkers: numWorkers,
		})
		ps.BulkIndexer = bi
	}

	if cfg.Processing.LocusDbPath != "" {
		ix, err := locus.Open(cfg.Processing.LocusDbPath)
		if err != nil {
			fmt.Printf("Failed to open locus index at %s : %s\n", cfg.Processing.LocusDbPath, err)
		} else {
			ps.LocusIndex = ix
		}
	}

	ps.Init()

	return ps
}

func (p *ProcessingService) Init() {
	// safeguard to prevent multiple initilizations
	if !p.Initialized {
		// spin up a go routine acting as a listener for process
		// request updates and block-call bulk indexing
		go func() {
			for {
				select {
				case processRequest := <-p.RequestChan:
					if processRequest.State == pr.Queued {
						fmt.Printf("Queueing a new processing request for %s\n", processRequest.Filename)
					}

					processRequest.UpdatedAt = time.Now().String()
					p.RequestMapMux.Lock()
					p.RequestMap[processRequest.Id.String()] = processRequest
					p.RequestMapMux.Unlock()

				case queuedItem := <-p.BulkIndexingQueue:

					queuedDoc := queuedItem.Document
					wg := queuedItem.WaitGroup

					// Prepare the data payload: encode document to JSON
					docData, marshallErr := json.Marshal(queuedDoc)
					if marshallErr != nil {
						log.Fatalf("Cannot encode block call %s:%d: %s\n", queuedDoc.Chrom, queuedDoc.Pos, marshallErr)
					}

					// Add an item to the BulkIndexer
					marshallErr = p.BulkIndexer.Add(
						context.Background(),
						esutil.BulkIndexerItem{
							// Action field configures the operation to perform (index, create, delete, update)
							Action: "index",

							// Body is an `io.Reader` with the payload
							Body: bytes.NewReader(docData),

							// OnSuccess is called for each successful operation
							OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
								defer wg.Done()
							},

							// OnFailure is called for each failed operation
							OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
								defer wg.Done()
								if err != nil {
									fmt.Printf("ERROR: %s", err)
								} else {
									fmt.Printf("ERROR: %s: %s", res.Error.Type, res.Error.Reason)
								}
							},
						},
					)
					if marshallErr != nil {
						fmt.Printf("Unexpected error: %s", marshallErr)
						wg.Done()
					}
				}
			}
		}()

		p.Initialized = true
	}
}

// ProcessVcf drives one file through the block pipeline : read,
// buffer per the policy, then fan the finalized blocks out to the
// statistics, the locus index, elasticsearch and (optionally) a
// rewritten VCF.
func (p *ProcessingService) ProcessVcf(
	vcfFilePath string, outputPath string,
	request *pr.ProcessRequest,
	policy constants.BufferPolicy, policyParam int64) {

	reader, err := vcf.Open(vcfFilePath)
	if err != nil {
		p.fail(request, fmt.Sprintf("Failed to open %s : %s", vcfFilePath, err))
		return
	}
	defer reader.Close()

	stage, err := processing.NewStage(policy, policyParam)
	if err != nil {
		p.fail(request, fmt.Sprintf("Failed to build a %s stage : %s", processing.PolicyToString(policy), err))
		return
	}

	var writer *vcf.Writer
	if outputPath != "" {
		writer, err = vcf.Create(outputPath, reader.SampleIds)
		if err != nil {
			p.fail(request, fmt.Sprintf("Failed to create %s : %s", outputPath, err))
			return
		}
		defer writer.Close()
	}

	stats := statistics.New(reader.SampleIds)
	p.RequestStatsMapMux.Lock()
	p.RequestStatsMap[request.Id.String()] = stats
	p.RequestStatsMapMux.Unlock()

	request.State = pr.Running
	p.RequestChan <- request

	fmt.Printf("[%s] - Processing %s with the %s policy\n", time.Now(), vcfFilePath, processing.PolicyToString(policy))

	var (
		indexingWG sync.WaitGroup
		blockCount int
	)

	blockChan := make(chan *variants.Block, 100)

	g := new(errgroup.Group)

	// producer : pull blocks through the buffering stage
	g.Go(func() error {
		defer close(blockChan)

		for {
			consumed, addErr := stage.AddFrom(reader)
			if addErr != nil {
				return addErr
			}
			for stage.Advance() {
				b, curErr := stage.Current()
				if curErr != nil {
					return curErr
				}
				blockChan <- b
			}
			if !consumed {
				break
			}
		}

		stage.Flush()
		for stage.Advance() {
			b, curErr := stage.Current()
			if curErr != nil {
				return curErr
			}
			blockChan <- b
		}

		return reader.Err()
	})

	// consumer : fan each finalized block out
	g.Go(func() error {
		for b := range blockChan {
			blockCount++

			stats.Observe(b)

			if p.LocusIndex != nil {
				if addErr := p.LocusIndex.Add(b); addErr != nil {
					return addErr
				}
			}

			if writer != nil {
				if writeErr := writer.Write(b); writeErr != nil {
					return writeErr
				}
			}

			if p.ElasticsearchClient != nil && p.Config.Elasticsearch.Enabled {
				docs := indexes.FromBlock(b, reader.SampleIds, request.Id.String())
				for i := range docs {
					indexingWG.Add(1)
					p.BulkIndexingQueue <- &structs.BlockCallQueueStructure{
						Document:  &docs[i],
						WaitGroup: &indexingWG,
					}
				}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		p.fail(request, fmt.Sprintf("Processing %s failed : %s", vcfFilePath, err))
		return
	}

	// let the queued documents be bulk indexed
	indexingWG.Wait()

	fmt.Printf("File %s waited for and complete!\n\t- Number of finalized blocks: %d\n", vcfFilePath, blockCount)

	request.State = pr.Done
	request.Message = fmt.Sprintf("%d blocks finalized", blockCount)
	p.RequestChan <- request
}

func (p *ProcessingService) fail(request *pr.ProcessRequest, message string) {
	fmt.Println(message)
	request.State = pr.Error
	request.Message = message
	p.RequestChan <- request
}

func (p *ProcessingService) FilenameAlreadyRunning(filename string) bool {
	p.RequestMapMux.Lock()
	defer p.RequestMapMux.Unlock()

	for _, v := range p.RequestMap {
		if v.Filename == filename && (v.State == pr.Queued || v.State == pr.Running) {
			return true
		}
	}
	return false
}

func (p *ProcessingService) RequestStats(requestId string) (*statistics.Statistics, bool) {
	p.RequestStatsMapMux.RLock()
	defer p.RequestStatsMapMux.RUnlock()

	stats, ok := p.RequestStatsMap[requestId]
	return stats, ok
}
