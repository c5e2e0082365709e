package structs

import (
	"sync"

	"haplo/api/models/indexes"
)

type BlockCallQueueStructure struct {
	Document  *indexes.BlockCall
	WaitGroup *sync.WaitGroup
}
