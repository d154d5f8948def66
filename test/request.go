package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/envelope-zero/analytics/internal/config"
	v1 "github.com/envelope-zero/analytics/internal/controllers/v1"
	"github.com/envelope-zero/analytics/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// BaseURL is the external URL of the API in tests.
const BaseURL = "http://example.com"

// Request is a helper method to simplify making a HTTP request for tests.
func Request(t *testing.T, co v1.Controller, method, reqURL string, body any, headers ...map[string]string) httptest.ResponseRecorder {
	var byteBuffer *bytes.Buffer

	switch b := body.(type) {
	case nil:
		byteBuffer = &bytes.Buffer{}
	case string:
		byteBuffer = bytes.NewBufferString(b)
	case *bytes.Buffer:
		byteBuffer = b
	default:
		byteStr, err := json.Marshal(body)
		if err != nil {
			assert.FailNow(t, "Request body could not be marshalled", "%T: %v", body, err)
		}
		byteBuffer = bytes.NewBuffer(byteStr)
	}

	baseURL, _ := url.Parse(BaseURL)
	api := config.API{GinMode: "test"}

	r, teardown, err := router.Config(api, baseURL)
	defer teardown()
	if err != nil {
		assert.FailNow(t, "Router could not be initialized", err.Error())
	}
	router.AttachRoutes(co, api, r.Group("/"))

	recorder := httptest.NewRecorder()
	req, _ := http.NewRequest(method, reqURL, byteBuffer)

	for _, headerMap := range headers {
		for header, value := range headerMap {
			req.Header.Set(header, value)
		}
	}

	r.ServeHTTP(recorder, req)

	return *recorder
}

// DecodeResponse decodes an HTTP response into a target struct.
func DecodeResponse(t *testing.T, r *httptest.ResponseRecorder, target any) {
	err := json.Unmarshal(r.Body.Bytes(), &target)
	if err != nil {
		assert.FailNow(t, "Parsing error", "Unable to parse response from server %q into %v, '%v', Request ID: %s", r.Body, reflect.TypeOf(target), err, r.Result().Header.Get("x-request-id"))
	}
}

// AssertHTTPStatus verifies that the HTTP response status is correct
func AssertHTTPStatus(t *testing.T, r *httptest.ResponseRecorder, expectedStatus ...int) {
	require.Contains(t, expectedStatus, r.Code, "HTTP status is wrong. Request ID: '%s' Response body: %s", r.Result().Header.Get("x-request-id"), r.Body.String())
}
