// Package controller owns the state of one income form: its raw values, the
// last validation outcome and the lifecycle of the last submission.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sells-group/income-predict/internal/form"
	"github.com/sells-group/income-predict/pkg/classifier"
)

// ErrUnknownField is returned when setting a field the variant does not define.
var ErrUnknownField = eris.New("controller: unknown field")

// Recorder receives submission outcomes, typically for metrics.
type Recorder interface {
	ObserveSubmission(model, outcome string, elapsed time.Duration)
	ObserveValidationFailure(variant, field string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSubmission(string, string, time.Duration) {}
func (nopRecorder) ObserveValidationFailure(string, string)          {}

// Option configures a Controller.
type Option func(*Controller)

// WithEndpoints replaces the model routes.
func WithEndpoints(e Endpoints) Option {
	return func(c *Controller) {
		c.endpoints = make(Endpoints, len(e))
		for k, v := range e {
			c.endpoints[k] = v
		}
	}
}

// WithModel preselects a model.
func WithModel(m Model) Option {
	return func(c *Controller) {
		c.model = m
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithListener registers fn to be called with every new lifecycle state.
func WithListener(fn func(State)) Option {
	return func(c *Controller) {
		c.listeners = append(c.listeners, fn)
	}
}

// WithLogger sets the logger. Defaults to the global zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// Controller holds one form instance. Field edits are allowed at any time;
// at most one submission is in flight.
type Controller struct {
	variant   Variant
	client    classifier.Client
	endpoints Endpoints
	recorder  Recorder
	listeners []func(State)
	logger    *zap.Logger

	inflight *semaphore.Weighted

	mu         sync.Mutex
	model      Model
	values     form.Values
	validation *form.Result
	state      State
}

// New creates a controller for variant that submits through client.
func New(v Variant, client classifier.Client, opts ...Option) (*Controller, error) {
	if v.Schema == nil || v.Mapper == nil {
		return nil, eris.Errorf("controller: variant %q needs a schema and a mapper", v.Name)
	}
	if client == nil {
		return nil, eris.New("controller: classifier client is nil")
	}
	c := &Controller{
		variant:   v,
		client:    client,
		endpoints: DefaultEndpoints(),
		recorder:  nopRecorder{},
		inflight:  semaphore.NewWeighted(1),
		model:     DefaultModel,
		values:    v.Schema.Blank(),
		state:     Idle(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if _, ok := c.endpoints[c.model]; !ok {
		return nil, eris.Errorf("controller: no endpoint for model %q", c.model)
	}
	return c, nil
}

func (c *Controller) log() *zap.Logger {
	if c.logger != nil {
		return c.logger
	}
	return zap.L()
}

// Variant returns the form variant.
func (c *Controller) Variant() Variant {
	return c.variant
}

// Model returns the selected model.
func (c *Controller) Model() Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// SelectModel changes the model used by the next submission.
func (c *Controller) SelectModel(m Model) error {
	if _, ok := c.endpoints[m]; !ok {
		return eris.Errorf("controller: unknown model %q", m)
	}
	c.mu.Lock()
	c.model = m
	c.mu.Unlock()
	return nil
}

// Set stores raw text for field.
func (c *Controller) Set(field, value string) error {
	if !c.variant.Schema.Has(field) {
		return eris.Wrapf(ErrUnknownField, "%q", field)
	}
	c.mu.Lock()
	c.values[field] = value
	c.mu.Unlock()
	return nil
}

// SetNumeric stores raw text for a numeric field, rejecting edits that are
// not digits. A rejected edit leaves the previous value in place.
func (c *Controller) SetNumeric(field, value string) error {
	f, ok := c.variant.Schema.Field(field)
	if !ok {
		return eris.Wrapf(ErrUnknownField, "%q", field)
	}
	if f.Kind != form.KindNumeric {
		return eris.Errorf("controller: field %q is not numeric", field)
	}
	if !form.IsDigits(value) {
		return form.ErrNotDigits
	}
	c.mu.Lock()
	c.values[field] = value
	c.mu.Unlock()
	return nil
}

// SetAll stores every value in v. Nothing is stored when any key is not a
// field of the form.
func (c *Controller) SetAll(v form.Values) error {
	keys := v.Keys()
	for _, k := range keys {
		if !c.variant.Schema.Has(k) {
			return eris.Wrapf(ErrUnknownField, "%q", k)
		}
	}
	for _, k := range keys {
		if err := c.Set(k, v[k]); err != nil {
			return err
		}
	}
	return nil
}

// Value returns the raw text of field.
func (c *Controller) Value(field string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[field]
}

// Values returns a copy of the raw values.
func (c *Controller) Values() form.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values.Clone()
}

// LastValidation returns the most recent validation result, if any.
func (c *Controller) LastValidation() (form.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.validation == nil {
		return form.Result{}, false
	}
	return *c.validation, true
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a submission is in flight. Renderers disable the
// submit control while it is true.
func (c *Controller) Busy() bool {
	return c.State().Status == StatusPending
}

// Submit validates the current values and, when valid, sends them to the
// selected model.
//
// A submission while another is in flight returns ErrSubmissionPending. An
// invalid form returns its *form.ValidationError and leaves the lifecycle
// state untouched; no request is made. Otherwise the state moves to Pending,
// clearing any earlier result or error, and then to Succeeded or Failed. Remote
// failures are reported through the returned State, not the error.
func (c *Controller) Submit(ctx context.Context) (State, error) {
	if !c.inflight.TryAcquire(1) {
		return c.State(), ErrSubmissionPending
	}
	defer c.inflight.Release(1)

	c.mu.Lock()
	res := c.variant.Schema.Validate(c.values)
	c.validation = &res
	if !res.Valid() {
		current := c.state
		c.mu.Unlock()
		c.recorder.ObserveValidationFailure(c.variant.Name, res.Err.Field)
		c.log().Debug("controller: validation failed",
			zap.String("variant", c.variant.Name),
			zap.String("field", res.Err.Field),
			zap.String("rule", string(res.Err.Rule)),
		)
		return current, res.Err
	}
	model := c.model
	endpoint := c.endpoints[model]
	c.state = pending()
	c.mu.Unlock()
	c.notify(pending())

	c.log().Debug("controller: submitting",
		zap.String("variant", c.variant.Name),
		zap.String("model", string(model)),
		zap.String("endpoint", endpoint),
	)

	start := time.Now()
	next := c.resolve(ctx, endpoint, res.Payload)
	elapsed := time.Since(start)

	c.mu.Lock()
	c.state = next
	c.mu.Unlock()
	c.notify(next)

	c.recorder.ObserveSubmission(string(model), next.Status.String(), elapsed)
	if next.Status == StatusFailed {
		c.log().Warn("controller: submission failed",
			zap.String("model", string(model)),
			zap.String("kind", string(ErrorKind(next.Err))),
			zap.Error(next.Err),
		)
	}
	return next, nil
}

func (c *Controller) resolve(ctx context.Context, endpoint string, payload form.Payload) State {
	resp, err := c.client.Predict(ctx, endpoint, payload)
	if err != nil {
		return failed(err)
	}
	result, err := c.variant.Mapper(payload, resp.Body)
	if err != nil {
		return failed(err)
	}
	return succeeded(result)
}

// Reset clears every value and returns to Idle, as a freshly mounted form.
func (c *Controller) Reset() error {
	if !c.inflight.TryAcquire(1) {
		return ErrSubmissionPending
	}
	defer c.inflight.Release(1)

	c.mu.Lock()
	c.values = c.variant.Schema.Blank()
	c.validation = nil
	c.state = Idle()
	c.mu.Unlock()
	c.notify(Idle())
	return nil
}

func (c *Controller) notify(s State) {
	for _, fn := range c.listeners {
		fn(s)
	}
}
