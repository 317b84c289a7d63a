package helpers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Validator is implemented by request DTOs that support validation.
// Validate returns a slice of error messages; nil or empty means valid.
type Validator interface {
	Validate() []string
}

// DecodeAndValidate decodes the request body into dest (with DisallowUnknownFields)
// and, if dest implements Validator, runs Validate(). On decode or validation failure
// it writes a 400 JSON error and returns false; otherwise returns true.
// Callers should return immediately when DecodeAndValidate returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	if v, ok := dest.(Validator); ok {
		if errs := v.Validate(); len(errs) > 0 {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(errs, "; "))
			return false
		}
	}
	return true
}

// isoDateRegex matches a calendar date with no time component.
var isoDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDates returns error messages for entries that are not valid
// YYYY-MM-DD calendar dates.
func ValidateDates(dates []string) []string {
	var errs []string
	for _, d := range dates {
		if !isoDateRegex.MatchString(d) {
			errs = append(errs, "date "+d+" must match YYYY-MM-DD")
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			errs = append(errs, "date "+d+" is not a calendar date")
		}
	}
	return errs
}
