package gateway

//go:generate go run go.uber.org/mock/mockgen -source=./gateway.go -destination=./mocks/gateway_mock.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"todoapp/config"
	"todoapp/infras/otel"
	"todoapp/internal/domains/todo/model/dto"
	"todoapp/shared/constant"
	"todoapp/shared/failure"
	"todoapp/shared/logger"
)

// Todo is the client side of the todo service's REST interface. Every
// call attaches the caller's bearer token; non-2xx responses surface as
// failures carrying the upstream status code.
type Todo interface {
	List(ctx context.Context, token string) ([]dto.TodoResponse, error)
	Create(ctx context.Context, token string, req dto.CreateTodoRequest) (dto.TodoResponse, error)
	Update(ctx context.Context, token string, id int64, req dto.UpdateTodoRequest) (dto.TodoResponse, error)
	Delete(ctx context.Context, token string, id int64) error
}

type todoGateway struct {
	baseURL string
	client  *http.Client
	otel    otel.Otel
}

func NewTodoGateway(cfg *config.Config, ot otel.Otel) Todo {
	return &todoGateway{
		baseURL: cfg.Client.TodoServiceURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		otel:    ot,
	}
}

func (g *todoGateway) List(ctx context.Context, token string) (res []dto.TodoResponse, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelGatewayScopeName, constant.OtelGatewayScopeName+".List")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = g.do(ctx, http.MethodGet, g.baseURL, token, nil, &res)

	return res, err
}

func (g *todoGateway) Create(ctx context.Context, token string, req dto.CreateTodoRequest) (res dto.TodoResponse, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelGatewayScopeName, constant.OtelGatewayScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = g.do(ctx, http.MethodPost, g.baseURL, token, req, &res)

	return res, err
}

func (g *todoGateway) Update(ctx context.Context, token string, id int64, req dto.UpdateTodoRequest) (res dto.TodoResponse, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelGatewayScopeName, constant.OtelGatewayScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = g.do(ctx, http.MethodPut, g.baseURL+"/"+strconv.FormatInt(id, 10), token, req, &res)

	return res, err
}

func (g *todoGateway) Delete(ctx context.Context, token string, id int64) (err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelGatewayScopeName, constant.OtelGatewayScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	return g.do(ctx, http.MethodDelete, g.baseURL+"/"+strconv.FormatInt(id, 10), token, nil, nil)
}

func (g *todoGateway) do(ctx context.Context, method, url, token string, payload, result any) error {
	var body io.Reader

	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			logger.ErrorWithStack(err)

			return errors.Wrap(err, "encoding request body")
		}

		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		logger.ErrorWithStack(err)

		return errors.Wrap(err, "building request")
	}

	request.Header.Set(constant.RequestHeaderAuthorization, constant.BearerSchema+token)

	if payload != nil {
		request.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	}

	response, err := g.client.Do(request)
	if err != nil {
		logger.ErrorWithStack(err)

		return errors.Wrap(err, "calling todo service")
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		io.Copy(io.Discard, response.Body) //nolint:errcheck

		return failure.Upstream(response.StatusCode)
	}

	if result == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(response.Body).Decode(result); err != nil {
		logger.ErrorWithStack(err)

		return errors.Wrap(err, "decoding response body")
	}

	return nil
}
