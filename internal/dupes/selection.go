package dupes

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSelection parses whitespace-separated report numbers.
// It only checks the format; membership is checked by Report.Validate.
func ParseSelection(input string) ([]int, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no numbers given", ErrInvalidSelection)
	}

	numbers := make([]int, 0, len(fields))

	for _, field := range fields {
		number, err := strconv.Atoi(field)
		if err != nil || number <= 0 {
			return nil, fmt.Errorf("%w: %q is not a positive number", ErrInvalidSelection, field)
		}

		numbers = append(numbers, number)
	}

	return numbers, nil
}
