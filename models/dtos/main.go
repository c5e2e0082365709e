package dtos

import (
	"haplo/api/models/indexes"
)

type BlockCallResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
type BlockCallGetResponse struct {
	BlockCallResponse
	Results []BlockCallQueryResult `json:"results"`
}
type BlockCallCountResponse struct {
	BlockCallResponse
	Count int `json:"count"`
}

type BlockCallQueryResult struct {
	QueryId string `json:"queryId"`

	Calls []indexes.BlockCall `json:"calls"`

	Chromosome string `json:"chromosome"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
}
