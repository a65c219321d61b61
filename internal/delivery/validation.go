package delivery

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/Vovarama1992/media-api/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Request schemas. Every handler runs decode + validate before the service is
// called, so the service only ever sees well-formed input.

type ListQuery struct {
	Page    int `json:"page" validate:"required,min=1"`
	PerPage int `json:"perPage" validate:"required,min=1"`
}

type SearchQuery struct {
	Query string `json:"query" validate:"required"`
}

type CreateMediaRequest struct {
	Type        *string `json:"type" validate:"omitnil,oneof=audio video image"`
	URL         string  `json:"url" validate:"required,weburl"`
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Status      *string `json:"status" validate:"omitnil,oneof=active inactive"`
}

func (r CreateMediaRequest) toModel() models.CreateMedia {
	out := models.CreateMedia{
		URL:         r.URL,
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Type != nil {
		t := models.MediaType(*r.Type)
		out.Type = &t
	}
	if r.Status != nil {
		s := models.Status(*r.Status)
		out.Status = &s
	}
	return out
}

// UpdateMediaRequest has no status: the only status transition is the one
// made by delete.
type UpdateMediaRequest struct {
	Type        *string `json:"type" validate:"omitnil,oneof=audio video image"`
	URL         *string `json:"url" validate:"omitnil,weburl"`
	Title       *string `json:"title" validate:"omitnil,min=1"`
	Description *string `json:"description" validate:"omitnil,min=1"`
}

func (r UpdateMediaRequest) toModel() models.MediaPatch {
	out := models.MediaPatch{
		URL:         r.URL,
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Type != nil {
		t := models.MediaType(*r.Type)
		out.Type = &t
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("weburl", isWebURL)
	return v
}

// isWebURL accepts http, https and ftp URLs whose host is an IP address or a
// dotted domain name ending in an alphabetic TLD. A missing scheme means http.
func isWebURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return false
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp":
	default:
		return false
	}

	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return true
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" || len(l) > 63 || strings.HasPrefix(l, "-") || strings.HasSuffix(l, "-") {
			return false
		}
		for _, r := range l {
			if r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
	}

	tld := labels[len(labels)-1]
	if strings.HasPrefix(strings.ToLower(tld), "xn--") {
		return len(tld) > 4
	}
	if len([]rune(tld)) < 2 {
		return false
	}
	for _, r := range tld {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Validate runs schema checks and converts failures into a 400 HTTPError
// carrying one message per failed field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &HTTPError{Status: http.StatusInternalServerError, Message: "Internal server error", Err: err}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &HTTPError{
		Status:   http.StatusBadRequest,
		Name:     "ValidationFault",
		Message:  "Bad Request",
		Messages: msgs,
		Err:      err,
	}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " should not be empty"
	case "min":
		if fe.Kind() == reflect.String {
			return field + " should not be empty"
		}
		return fmt.Sprintf("%s must not be less than %s", field, fe.Param())
	case "weburl":
		return field + " must be a URL address"
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s",
			field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", field, fe.Tag())
	}
}

func decodeListQuery(r *http.Request) (ListQuery, error) {
	var (
		q    ListQuery
		msgs []string
	)

	q.Page, msgs = queryInt(r, "page", msgs)
	q.PerPage, msgs = queryInt(r, "perPage", msgs)
	if len(msgs) > 0 {
		return q, validationError(msgs...)
	}

	return q, Validate(q)
}

func queryInt(r *http.Request, name string, msgs []string) (int, []string) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, append(msgs, name+" must be an integer number")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, append(msgs, name+" must be an integer number")
	}
	return n, msgs
}

func decodeSearchQuery(r *http.Request) (SearchQuery, error) {
	q := SearchQuery{Query: r.URL.Query().Get("query")}
	return q, Validate(q)
}

// decodeBody decodes a JSON object into dst, rejecting unknown fields and
// trailing data.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return validationError("request body must not be empty")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return validationError(typeMessage(typeErr))
		}
		return validationError("invalid json: " + err.Error())
	}
	if dec.More() {
		return validationError("invalid json: unexpected data after the object")
	}
	return nil
}

func typeMessage(e *json.UnmarshalTypeError) string {
	if e.Field == "" {
		return "request body must be a JSON object"
	}

	t := e.Type
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return e.Field + " must be a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.Field + " must be an integer number"
	case reflect.Bool:
		return e.Field + " must be a boolean value"
	default:
		return fmt.Sprintf("%s must be of type %s", e.Field, t.Kind())
	}
}

// parseID accepts only the hyphenated 36 character UUID form and returns it
// lowercased.
func parseID(raw string) (string, error) {
	if len(raw) != 36 {
		return "", validationError("Validation failed (uuid is expected)")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", validationError("Validation failed (uuid is expected)")
	}
	return id.String(), nil
}

func validationError(msgs ...string) *HTTPError {
	return &HTTPError{
		Status:   http.StatusBadRequest,
		Name:     "ValidationFault",
		Message:  "Bad Request",
		Messages: msgs,
	}
}
