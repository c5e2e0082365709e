package sort

import (
	"strings"

	"haplo/api/models/constants"
)

const (
	Undefined  constants.SortDirection = ""
	Ascending  constants.SortDirection = "asc"
	Descending constants.SortDirection = "desc"
)

func CastToSortDirection(text string) constants.SortDirection {
	switch strings.ToLower(text) {
	case "asc":
		return Ascending
	case "desc":
		return Descending
	default:
		return Undefined
	}
}
