package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout Haplo and it's
	associated services.
*/
type GTType int
type Ploidy int
type BufferPolicy int

type SortDirection string
