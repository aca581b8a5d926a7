package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/Corridorx/pkg/util"
	"go.uber.org/zap"
)

const maxRequestBodyBytes = 8 << 20

type envelope map[string]interface{}

// requestValidator. validator.Validate caches struct metadata and is safe for concurrent use
type requestValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newRequestValidator() *requestValidator {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	return &requestValidator{
		validate: validate,
		trans:    trans,
	}
}

func (rv *requestValidator) Struct(s interface{}) error {
	if err := rv.validate.Struct(s); err != nil {
		vv := translateError(err, rv.trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		return fmt.Errorf("validation error: %v", vvString)
	}
	return nil
}

func translateError(err error, trans ut.Translator) []error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []error{err}
	}

	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}

// parseFloatParam. required finite float query parameter
func parseFloatParam(query url.Values, name string) (float64, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return 0, fmt.Errorf("%s is required and must be a valid float", name)
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, fmt.Errorf("%s is required and must be a valid float", name)
	}
	return val, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesErr.Limit)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		default:
			return fmt.Errorf("body contains badly-formed JSON: %w", err)
		}
	}
	if dec.More() {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func NewErrorResponse(status int, message string) ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = http.StatusText(status)
	resp.Error.Message = message
	return resp
}

type errorWriter struct {
	log *zap.Logger
}

func (ew errorWriter) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := writeJSON(w, status, NewErrorResponse(status, message), nil); err != nil {
		ew.log.Error("failed to write error response", zap.Error(err), zap.String("url", r.URL.String()))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (ew errorWriter) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	ew.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (ew errorWriter) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	ew.log.Error("server error", zap.Error(err), zap.String("method", r.Method), zap.String("url", r.URL.String()))
	ew.errorResponse(w, r, http.StatusInternalServerError, util.MessageInternalServerError)
}

// statusOf. http status and client message for an error returned by the service layer
func statusOf(err error) (int, string) {
	var uerr *util.Error
	if !errors.As(err, &uerr) {
		return http.StatusInternalServerError, util.MessageInternalServerError
	}
	switch uerr.Code() {
	case util.ErrBadParamInput:
		return http.StatusBadRequest, uerr.Message()
	case util.ErrNotFound:
		return http.StatusNotFound, uerr.Message()
	case util.ErrUpstream:
		return http.StatusBadGateway, uerr.Message()
	default:
		return http.StatusInternalServerError, util.MessageInternalServerError
	}
}

func (ew errorWriter) getStatusCode(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusOf(err)
	if status == http.StatusInternalServerError {
		ew.ServerErrorResponse(w, r, err)
		return
	}
	if status == http.StatusBadGateway {
		ew.log.Warn("upstream error", zap.Error(err), zap.String("url", r.URL.String()))
	}
	ew.errorResponse(w, r, status, message)
}
