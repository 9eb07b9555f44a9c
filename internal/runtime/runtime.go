// Package runtime adapts the sponsorship handler to its hosting environments: a plain HTTP server and AWS Lambda.
package runtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/gh-sponsor-relay/internal/handler"
	"github.com/isometry/gh-sponsor-relay/internal/helpers"
	"github.com/isometry/gh-sponsor-relay/internal/models"
	"github.com/isometry/gh-sponsor-relay/internal/sponsorship"
	"github.com/pkg/errors"
)

const (
	// PayloadTypeAPIGatewayV1 selects API Gateway REST API proxy events.
	PayloadTypeAPIGatewayV1 = "api-gateway-v1"
	// PayloadTypeAPIGatewayV2 selects API Gateway HTTP API events.
	PayloadTypeAPIGatewayV2 = "api-gateway-v2"
	// PayloadTypeLambdaURL selects Lambda function URL events.
	PayloadTypeLambdaURL = "lambda-url"

	// DefaultMaxPayloadBytes is the largest webhook payload GitHub delivers.
	DefaultMaxPayloadBytes int64 = 25 << 20
)

// Option is a functional option applied to a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithMaxPayloadBytes caps the size of bodies read by ServeHTTP.
func WithMaxPayloadBytes(n int64) Option {
	return func(r *Runtime) {
		if n > 0 {
			r.maxPayloadBytes = n
		}
	}
}

// Runtime reads inbound requests and writes the handler's response back to the caller.
type Runtime struct {
	*handler.Handler
	logger          *slog.Logger
	maxPayloadBytes int64
}

// NewRuntime creates a new runtime instance
func NewRuntime(handler *handler.Handler, opts ...Option) *Runtime {
	_inst := &Runtime{Handler: handler, maxPayloadBytes: DefaultMaxPayloadBytes}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	return _inst
}

// ServeHTTP is the HTTP handler for the runtime. Every method and path is handled.
func (r *Runtime) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	r.logger.Debug("received HTTP request...", slog.Any("requestor", req.RemoteAddr), slog.Any("method", req.Method), slog.Any("path", req.URL.Path))

	body, err := io.ReadAll(http.MaxBytesReader(resp, req.Body, r.maxPayloadBytes))
	if err != nil {
		result, _ := r.Handler.Fail(sponsorship.WrapError(sponsorship.KindBodyRead, err, "failed to read request body"))
		helpers.RespondHTTP(result.Response, resp)
		return
	}

	result, _ := r.Handler.Process(req.Context(), models.Request{
		Body:    body,
		Headers: helpers.NormaliseHeaders(map[string][]string(req.Header)),
	})
	helpers.RespondHTTP(result.Response, resp)
}

// HandleEvent is the Lambda handler for the runtime. The event is decoded according to the configured payload type.
// Request failures are reported through the response status code, never as an invocation error.
func (r *Runtime) HandleEvent(ctx context.Context, raw json.RawMessage) (any, error) {
	r.logger.Info("received Lambda event")

	payloadType := r.Handler.GetLambdaPayloadType()
	req, err := decodeEvent(payloadType, raw)
	if err != nil {
		var kindErr *sponsorship.Error
		if !errors.As(err, &kindErr) {
			return nil, err
		}
		result, _ := r.Handler.Fail(err)
		return encodeResponse(payloadType, result.Response)
	}

	result, _ := r.Handler.Process(ctx, *req)
	return encodeResponse(payloadType, result.Response)
}

func decodeEvent(payloadType string, raw json.RawMessage) (*models.Request, error) {
	var (
		body     string
		encoded  bool
		headers  map[string]string
		multiple map[string][]string
	)
	switch payloadType {
	case PayloadTypeAPIGatewayV1:
		var e events.APIGatewayProxyRequest
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, sponsorship.WrapError(sponsorship.KindBodyRead, err, "failed to decode API Gateway v1 event")
		}
		body, encoded, headers, multiple = e.Body, e.IsBase64Encoded, e.Headers, e.MultiValueHeaders
	case PayloadTypeAPIGatewayV2:
		var e events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, sponsorship.WrapError(sponsorship.KindBodyRead, err, "failed to decode API Gateway v2 event")
		}
		body, encoded, headers = e.Body, e.IsBase64Encoded, e.Headers
	case PayloadTypeLambdaURL:
		var e events.LambdaFunctionURLRequest
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, sponsorship.WrapError(sponsorship.KindBodyRead, err, "failed to decode Lambda function URL event")
		}
		body, encoded, headers = e.Body, e.IsBase64Encoded, e.Headers
	default:
		return nil, errors.Errorf("unsupported lambda payload type: %s", payloadType)
	}

	normalised := helpers.NormaliseHeaders(multiple)
	for k, v := range helpers.NormaliseHeaders(headers) {
		normalised[k] = v
	}

	decoded, err := readBody(body, encoded)
	if err != nil {
		return nil, err
	}
	return &models.Request{Body: decoded, Headers: normalised}, nil
}

func readBody(body string, base64Encoded bool) ([]byte, error) {
	if !base64Encoded {
		return []byte(body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, sponsorship.WrapError(sponsorship.KindBodyRead, err, "failed to decode base64 body")
	}
	return decoded, nil
}

func encodeResponse(payloadType string, response models.Response) (any, error) {
	switch payloadType {
	case PayloadTypeAPIGatewayV1:
		return events.APIGatewayProxyResponse{
			Body:       response.Body,
			Headers:    response.Headers,
			StatusCode: response.StatusCode,
		}, nil
	case PayloadTypeAPIGatewayV2:
		return events.APIGatewayV2HTTPResponse{
			Body:       response.Body,
			Headers:    response.Headers,
			StatusCode: response.StatusCode,
		}, nil
	case PayloadTypeLambdaURL:
		return events.LambdaFunctionURLResponse{
			Body:       response.Body,
			Headers:    response.Headers,
			StatusCode: response.StatusCode,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported lambda payload type: %s", payloadType)
	}
}
