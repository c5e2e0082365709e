package chromosome

import (
	"fmt"
	"strconv"
	"strings"
)

func ValidListOfHumanChromosomes() []string {
	var humChroms []string
	for i := 1; i < 24; i++ {
		humChroms = append(humChroms, fmt.Sprint(i))
	}
	humChroms = append(humChroms, "X")
	humChroms = append(humChroms, "Y")
	humChroms = append(humChroms, "M")
	return humChroms
}

func IsValidHumanChromosome(text string) bool {
	// strip an eventual ucsc-style prefix before checking
	text = strings.TrimPrefix(text, "chr")

	// Check if number can be represented as an int and is non-zero
	chromNumber, _ := strconv.Atoi(text)
	if chromNumber > 0 {
		// It can..
		// Check if it is in range 1-23
		if chromNumber < 24 {
			return true
		}
	} else {
		// No it can't..
		// Check if it is an X, Y..
		loweredText := strings.ToLower(text)
		switch loweredText {
		case "x":
			return true
		case "y":
			return true
		}

		// ..or M (MT)
		switch strings.Contains(loweredText, "m") {
		case true:
			return true
		}
	}

	return false
}

// Rank maps a chromosome name onto a sortable integer
// (1-22, X=23, Y=24, M/MT=25). Unknown names rank last so an
// ordering check against them never trips on exotic contigs.
func Rank(text string) int {
	text = strings.TrimPrefix(text, "chr")

	chromNumber, _ := strconv.Atoi(text)
	if chromNumber > 0 && chromNumber < 24 {
		return chromNumber
	}

	switch strings.ToLower(text) {
	case "x":
		return 23
	case "y":
		return 24
	case "m", "mt":
		return 25
	}

	return 26
}
