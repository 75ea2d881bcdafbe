package divelog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Schema constraints for the three record fields. Argument validation must
// reproduce these independently of the model's own judgment.
const (
	DatePattern   = `^[0-9]{4}-[0-9]{2}-[0-9]{2}$`
	NumberPattern = `^[0-9]+$`
	MinLocation   = 3
	dateLayout    = "2006-01-02"
)

var (
	dateRe   = regexp.MustCompile(DatePattern)
	numberRe = regexp.MustCompile(NumberPattern)
)

// ValidateDate checks an unambiguous YYYY-MM-DD calendar date. Other
// orderings are rejected even when superficially date-like; no inference
// or reformatting is performed.
func ValidateDate(raw string) (string, error) {
	date := strings.TrimSpace(raw)
	if !dateRe.MatchString(date) {
		return "", fmt.Errorf("invalid date format, please use YYYY-MM-DD")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", fmt.Errorf("not a real calendar date, please use YYYY-MM-DD")
	}
	return date, nil
}

// ValidateNumber checks a non-negative integer supplied as a token of digits.
func ValidateNumber(raw string) (int, error) {
	token := strings.TrimSpace(raw)
	if !numberRe.MatchString(token) {
		return 0, fmt.Errorf("dive number must be a whole number")
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("dive number must be a whole number")
	}
	return n, nil
}

// ValidateLocation checks a location of at least three characters after
// trimming whitespace.
func ValidateLocation(raw string) (string, error) {
	location := strings.TrimSpace(raw)
	if len(location) < MinLocation {
		return "", fmt.Errorf("dive location must be at least three characters")
	}
	return location, nil
}
