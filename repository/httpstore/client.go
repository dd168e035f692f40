package httpstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const tasksPath = "/api/tasks"

// Client is the request/response TaskStore backed by the REST API.
// Reads are pull-only; writes report only an affected-row count.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	logger  *zap.Logger
}

var _ repository.TaskStore = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the underlying fasthttp client, e.g. to dial an in-memory listener.
func WithHTTPClient(c *fasthttp.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			Name:                "taskboard",
			MaxIdleConnDuration: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) List(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, fasthttp.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}
	var created domain.Task
	if err := c.do(ctx, fasthttp.MethodPost, tasksPath, transport.NewTaskCreateRequest(input), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update maps a zero affected-row count to domain.ErrTaskNotFound.
func (c *Client) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	body, err := transport.NewTaskUpdateRequest(patch)
	if err != nil {
		return err
	}
	var res transport.ChangesResponse
	if err := c.do(ctx, fasthttp.MethodPut, taskPath(id), body, &res); err != nil {
		return err
	}
	if res.Changes == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	var res transport.ChangesResponse
	return c.do(ctx, fasthttp.MethodDelete, taskPath(id), nil, &res)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return domain.Unavailable(method+" "+path, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.Do(req, resp)
	}
	if err != nil {
		c.logger.Warn("task api unreachable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return domain.Unavailable(method+" "+path, err)
	}

	var env transport.RawEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		if resp.StatusCode() >= http.StatusInternalServerError {
			return domain.Unavailable(method+" "+path, statusError(resp.StatusCode()))
		}
		return domain.WrapError(domain.ErrCodeInternal, "malformed response", err)
	}
	if err := env.Err(); err != nil {
		return err
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return domain.Unavailable(method+" "+path, statusError(resp.StatusCode()))
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return domain.WrapError(domain.ErrCodeInternal, "malformed response", err)
		}
	}
	return nil
}

func taskPath(id string) string {
	return tasksPath + "/" + url.PathEscape(id)
}

type statusError int

func (e statusError) Error() string {
	return http.StatusText(int(e))
}
