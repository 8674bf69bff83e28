// This file implements utilities for parsing and validating request data:
// path values, query filters and JSON bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kengo-k/taxdesk-sub002/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

func asError(err error, target **core.Error) bool {
	return errors.As(err, target)
}

// PathFiscalYear validates the {fy} path value.
func PathFiscalYear(r *http.Request) (string, error) {
	return core.ParseFiscalYear(r.PathValue("fy"))
}

// PathID parses a positive integer path value.
func PathID(r *http.Request, name string) (int64, error) {
	v := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Validation(core.CodeInvalidRequest, "invalid %s %q", name, v)
	}
	return id, nil
}

// ParseJournalFilter reads the month, account and checked query parameters.
func ParseJournalFilter(query url.Values) (core.JournalFilter, error) {
	month, err := core.ParseMonthFilter(query.Get("month"))
	if err != nil {
		return core.JournalFilter{}, err
	}
	filter := core.JournalFilter{Month: month, Account: strings.TrimSpace(query.Get("account"))}
	if v := strings.TrimSpace(query.Get("checked")); v != "" {
		checked, err := ParseCheckedFlag(v)
		if err != nil {
			return core.JournalFilter{}, err
		}
		filter.Checked = &checked
	}
	return filter, nil
}

// ParseCheckedFlag accepts "1"/"0" and "true"/"false".
func ParseCheckedFlag(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	default:
		return false, core.Validation(core.CodeInvalidRequest, "checked must be \"0\" or \"1\", got %q", v)
	}
}

// ParseDates reads every date query value. Values may repeat or be comma separated.
func ParseDates(query url.Values) ([]core.Date, error) {
	var out []core.Date
	for _, raw := range query["date"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			d, err := core.ParseDate(part)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, core.Validation(core.CodeInvalidDate, "at least one date is required")
	}
	return out, nil
}

// DecodeJSON reads a bounded JSON body into v, rejecting trailing data.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return core.Validation(core.CodeInvalidRequest, "malformed request body: %v", err)
	}
	if dec.More() {
		return core.Validation(core.CodeInvalidRequest, "malformed request body: trailing data")
	}
	return nil
}

// checkedFlag decodes "0"/"1" strings as well as JSON booleans and 0/1 numbers.
type checkedFlag bool

func (c *checkedFlag) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case bool:
		s = strconv.FormatBool(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Errorf("checked must be \"0\" or \"1\"")
	}
	ok, err := ParseCheckedFlag(s)
	if err != nil {
		return err
	}
	*c = checkedFlag(ok)
	return nil
}
