package helpers

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"terraform-provider-cloudram/internal/clientmodels"
	"terraform-provider-cloudram/internal/constants"

	"github.com/goccy/go-json"
	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/pkg/errors"
)

type HttpCallerVerb string

const (
	HttpCallerVerbGet  HttpCallerVerb = "GET"
	HttpCallerVerbPost HttpCallerVerb = "POST"
)

func (v HttpCallerVerb) String() string {
	return string(v)
}

type HttpCaller struct {
	ctx    context.Context
	client *http.Client
}

type HttpCallerAuth struct {
	BearerToken string
}

type HttpCallerResponse struct {
	StatusCode int
	Data       interface{}
	// Raw holds a successful body that did not decode into the destination.
	Raw      string
	ApiError *clientmodels.APIErrorResponse
}

func NewHttpCaller(ctx context.Context, disableTlsVerification bool) *HttpCaller {
	client := http.DefaultClient
	if disableTlsVerification {
		client = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}

	return &HttpCaller{
		ctx:    ctx,
		client: client,
	}
}

func (c *HttpCaller) GetDataFromClient(url string, auth *HttpCallerAuth, timeout time.Duration, destination interface{}) (*HttpCallerResponse, error) {
	return c.RequestDataToClient(HttpCallerVerbGet, url, nil, auth, timeout, destination)
}

func (c *HttpCaller) PostDataToClient(url string, data interface{}, auth *HttpCallerAuth, timeout time.Duration, destination interface{}) (*HttpCallerResponse, error) {
	return c.RequestDataToClient(HttpCallerVerbPost, url, data, auth, timeout, destination)
}

// RequestDataToClient performs one call bounded by timeout. On expiry the
// request is aborted and a *TimeoutError is returned; other transport
// failures come back as *NetworkError and non-2xx answers as *HttpError.
func (c *HttpCaller) RequestDataToClient(verb HttpCallerVerb, url string, data interface{}, auth *HttpCallerAuth, timeout time.Duration, destination interface{}) (*HttpCallerResponse, error) {
	tflog.Debug(c.ctx, fmt.Sprintf("%v data from %s", verb, url))
	clientResponse := HttpCallerResponse{}

	if destination != nil {
		destType := reflect.TypeOf(destination)
		if destType.Kind() != reflect.Ptr {
			return &clientResponse, errors.New("dest must be a pointer type")
		}
	}

	if url == "" {
		return &clientResponse, errors.New("url cannot be empty")
	}

	if timeout <= 0 {
		return &clientResponse, errors.Errorf("timeout for %s %s must be positive", verb, url)
	}

	callCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()

	var body io.Reader
	if data != nil {
		reqBody, err := json.Marshal(data)
		if err != nil {
			return &clientResponse, errors.Wrap(err, "error marshalling data")
		}
		body = bytes.NewBuffer(reqBody)
	}

	req, err := http.NewRequestWithContext(callCtx, verb.String(), url, body)
	if err != nil {
		return &clientResponse, errors.Wrap(err, "error creating request")
	}

	if auth != nil && auth.BearerToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", auth.BearerToken))
	}

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set(constants.NoCacheHeader, "true")

	response, err := c.client.Do(req)
	if err != nil {
		return &clientResponse, c.classify(callCtx, verb, url, timeout, err)
	}
	defer response.Body.Close()

	clientResponse.StatusCode = response.StatusCode
	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return &clientResponse, c.classify(callCtx, verb, url, timeout, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		clientResponse.ApiError = clientmodels.NewAPIErrorResponse(response.StatusCode, responseBody)
		detail := clientResponse.ApiError.Describe(response.Status)
		tflog.Debug(c.ctx, fmt.Sprintf("error on %s data from %s, status code: %d, detail: %s", verb, url, response.StatusCode, detail))
		return &clientResponse, &HttpError{
			Verb:       verb,
			Url:        url,
			StatusCode: response.StatusCode,
			Detail:     detail,
		}
	}

	if destination != nil && len(bytes.TrimSpace(responseBody)) > 0 {
		if err := json.Unmarshal(responseBody, destination); err != nil {
			// The call succeeded, only the body is not what we expected
			if dest := reflect.ValueOf(destination); !dest.IsNil() {
				dest.Elem().Set(reflect.Zero(dest.Elem().Type()))
			}
			clientResponse.Raw = strings.TrimSpace(string(responseBody))
			tflog.Debug(c.ctx, fmt.Sprintf("%s %s answered %d with a body that is not json: %s", verb, url, response.StatusCode, clientResponse.Raw))
			return &clientResponse, nil
		}

		clientResponse.Data = destination
	}

	return &clientResponse, nil
}

func (c *HttpCaller) classify(callCtx context.Context, verb HttpCallerVerb, url string, timeout time.Duration, err error) error {
	if c.ctx.Err() != nil {
		return errors.Wrapf(c.ctx.Err(), "%s %s cancelled", verb, url)
	}

	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		tflog.Warn(c.ctx, fmt.Sprintf("%s %s timed out after %s", verb, url, timeout))
		return &TimeoutError{
			Verb:  verb,
			Url:   url,
			After: timeout,
		}
	}

	return &NetworkError{
		Verb: verb,
		Url:  url,
		Err:  err,
	}
}
