package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"haplo/api/contexts"
	gam "haplo/api/middleware"
	"haplo/api/models"
	serviceInfo "haplo/api/models/constants/service-info"
	serviceInfoMvc "haplo/api/mvc/service-info"
	variantsMvc "haplo/api/mvc/variants"
	esRepo "haplo/api/repositories/elasticsearch"
	"haplo/api/services"
	"haplo/api/services/sanitation"
	"haplo/api/utils"

	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"

	es7 "github.com/elastic/go-elasticsearch/v7"
)

func main() {
	// Gather configuration : an optional yaml file first,
	// then environment variables on top
	var cfg models.Config
	if configFile := os.Getenv("HAPLO_CONFIG_FILE"); configFile != "" {
		loaded, loadErr := models.LoadConfig(configFile)
		if loadErr != nil {
			fmt.Println(loadErr)
			os.Exit(2)
		}
		cfg = *loaded
	}
	err := envconfig.Process("", &cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	fmt.Printf("Using : \n"+

		"\tDebug : %t \n\n"+

		"\tVCF Directory Path : %s \n"+
		"\tBuffering Policy : %s \n"+
		"\tBuffering Policy Parameter : %d\n"+
		"\tLocus DB Path : %s\n\n"+

		"\tElasticsearch Enabled : %t\n"+
		"\tElasticsearch Url : %s \n"+
		"\tElasticsearch Username : %s\n\n"+

		"Running on Port : %s\n",

		cfg.Debug,
		cfg.Api.VcfPath,
		cfg.Processing.BufferPolicy,
		cfg.Processing.BufferParam,
		cfg.Processing.LocusDbPath,
		cfg.Elasticsearch.Enabled,
		cfg.Elasticsearch.Url, cfg.Elasticsearch.Username,
		cfg.Api.Port)
	// --

	// Instantiate Server
	e := echo.New()

	// Service Connections:
	// -- Elasticsearch
	var es *es7.Client
	if cfg.Elasticsearch.Enabled {
		es = utils.CreateEsConnection(cfg.Elasticsearch.Url, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if indexErr := esRepo.CreateBlockCallsIndex(&cfg, es); indexErr != nil {
			fmt.Printf("Failed to set up the block-calls index : %s\n", indexErr)
		}
	}

	// Service Singletons
	ps := services.NewProcessingService(es, &cfg)
	sanitation.NewSanitationService(es, ps, &cfg)

	// Configure Server
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
	}))

	// -- Override handlers with "custom Haplo" context
	//		to be able to provide variables and global singletons
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &contexts.HaploContext{
				Context:           c,
				Es7Client:         es,
				Config:            &cfg,
				ProcessingService: ps,
			}
			return h(cc)
		}
	})

	// Begin MVC Routes
	// -- Root
	e.GET("/", func(c echo.Context) error {
		fmt.Printf("[%s] - Root hit!\n", time.Now())
		return c.JSON(http.StatusOK, serviceInfo.SERVICE_WELCOME)
	})

	// -- Service Info
	e.GET("/service-info", serviceInfoMvc.GetServiceInfo)

	// -- Variants
	e.GET("/variants/overview", variantsMvc.GetBlockCallsOverview)

	e.GET("/variants/get/by/sampleId", variantsMvc.BlockCallsGetBySampleId,
		// middleware
		gam.MandateChromosomeAttribute,
		gam.MandateCalibratedBounds,
		gam.ValidatePotentialGtTypeQueryParameter)
	e.GET("/variants/count/by/sampleId", variantsMvc.BlockCallsCountBySampleId,
		// middleware
		gam.MandateChromosomeAttribute,
		gam.MandateCalibratedBounds,
		gam.ValidatePotentialGtTypeQueryParameter)

	// -- Blocks (locus index)
	e.GET("/variants/blocks", variantsMvc.GetBlocksInRange,
		// middleware
		gam.MandateChromosomeAttribute,
		gam.MandateCalibratedBounds)

	// -- Processing
	e.GET("/variants/processing/run", variantsMvc.VariantsProcess,
		// middleware
		gam.ValidatePotentialBufferPolicyParameter)
	e.GET("/variants/processing/requests", variantsMvc.GetAllProcessRequests)
	e.GET("/variants/processing/requests/stats", variantsMvc.GetProcessRequestStats)
	e.GET("/variants/processing/stats", variantsMvc.ProcessingStats)

	// Run
	e.Logger.Fatal(e.Start(":" + cfg.Api.Port))
}
