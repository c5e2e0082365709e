package indexes

import (
	"time"

	"haplo/api/models/constants/gttype"
	"haplo/api/models/variants"
)

// BlockCall is the Elasticsearch document for one sample's call
// inside a finalized block.
type BlockCall struct {
	Chrom string `json:"chrom"`
	Pos   int64  `json:"pos"`
	End   int64  `json:"end"`

	Ref []string `json:"ref"`
	Alt []string `json:"alt"`

	Info string `json:"info"`

	SampleId  string   `json:"sampleId"`
	Genotype  string   `json:"genotype"`
	GTType    string   `json:"gtType"`
	Phased    bool     `json:"phased"`
	Filters   []string `json:"filters"`
	Depth     int      `json:"depth"`
	Quality   float64  `json:"quality"`
	Ambiguous bool     `json:"ambiguous"`

	RequestId   string    `json:"requestId"`
	CreatedTime time.Time `json:"createdTime"`
}

// FromBlock flattens a block into one document per sample.
func FromBlock(b *variants.Block, sampleIds []string, requestId string) []BlockCall {
	refs := make([]string, 0, len(b.Variation))
	alts := make([]string, 0, len(b.Variation))
	for _, rv := range b.Variation {
		refs = append(refs, rv.Ref)
		alts = append(alts, rv.Alt)
	}

	now := time.Now().UTC()

	docs := make([]BlockCall, 0, len(b.Calls))
	for idx := range b.Calls {
		call := &b.Calls[idx]

		sampleId := ""
		if idx < len(sampleIds) {
			sampleId = sampleIds[idx]
		}

		docs = append(docs, BlockCall{
			Chrom:       b.Chrom,
			Pos:         b.Pos,
			End:         b.End(),
			Ref:         refs,
			Alt:         alts,
			Info:        b.Info,
			SampleId:    sampleId,
			Genotype:    call.GTString(),
			GTType:      gttype.GTTypeToString(call.GTType()),
			Phased:      call.Phased,
			Filters:     call.FilterList(),
			Depth:       call.DP,
			Quality:     call.Qual,
			Ambiguous:   len(b.AmbiguousAlleles[idx]) > 0,
			RequestId:   requestId,
			CreatedTime: now,
		})
	}

	return docs
}

var MAPPING_FIELDS_KEYWORD_IG256 = map[string]interface{}{
	"keyword": map[string]interface{}{
		"type":         "keyword",
		"ignore_above": 256,
	},
}
var MAPPING_TEXT = map[string]interface{}{"type": "text", "fields": MAPPING_FIELDS_KEYWORD_IG256}
var MAPPING_LONG = map[string]interface{}{"type": "long"}
var MAPPING_FLOAT64 = map[string]interface{}{"type": "double"}
var MAPPING_BOOL = map[string]interface{}{"type": "boolean"}
var MAPPING_DATE = map[string]interface{}{"type": "date"}

var BLOCK_CALL_INDEX_MAPPING = map[string]interface{}{
	"properties": map[string]interface{}{
		"chrom":       MAPPING_TEXT,
		"pos":         MAPPING_LONG,
		"end":         MAPPING_LONG,
		"ref":         MAPPING_TEXT,
		"alt":         MAPPING_TEXT,
		"info":        MAPPING_TEXT,
		"sampleId":    MAPPING_TEXT,
		"genotype":    MAPPING_TEXT,
		"gtType":      MAPPING_TEXT,
		"phased":      MAPPING_BOOL,
		"filters":     MAPPING_TEXT,
		"depth":       MAPPING_LONG,
		"quality":     MAPPING_FLOAT64,
		"ambiguous":   MAPPING_BOOL,
		"requestId":   MAPPING_TEXT,
		"createdTime": MAPPING_DATE,
	},
}
