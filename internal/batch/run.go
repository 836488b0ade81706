package batch

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/income-predict/internal/controller"
	"github.com/sells-group/income-predict/internal/form"
	"github.com/sells-group/income-predict/pkg/classifier"
)

// ErrNotRun marks rows left unsubmitted when the batch ended early.
var ErrNotRun = eris.New("batch: row not submitted")

// Row statuses that never reach the service.
const (
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Options configures Run.
type Options struct {
	Variant   controller.Variant
	Client    classifier.Client
	Endpoints controller.Endpoints
	// DefaultModel is used for rows without a model column value.
	DefaultModel controller.Model
	Concurrency  int
	// RatePerSec caps submissions per second. Zero means unlimited.
	RatePerSec float64
	Recorder   controller.Recorder
}

// Outcome is the result of one row.
type Outcome struct {
	Row   Row
	Model controller.Model
	State controller.State
	// Err is set when the row never produced a lifecycle outcome: a
	// validation failure or a controller setup error.
	Err error
}

// Status is the row's lifecycle status, or invalid/error when it was never sent.
func (o Outcome) Status() string {
	var verr *form.ValidationError
	switch {
	case errors.As(o.Err, &verr):
		return StatusInvalid
	case o.Err != nil:
		return StatusError
	default:
		return o.State.Status.String()
	}
}

// Message is the user-facing error text, empty on success.
func (o Outcome) Message() string {
	var verr *form.ValidationError
	switch {
	case errors.As(o.Err, &verr):
		return verr.Message
	case o.Err != nil:
		return o.Err.Error()
	default:
		return o.State.Message
	}
}

// Summary counts outcomes by status.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Invalid   int `json:"invalid"`
	Errored   int `json:"errored"`
}

// Run submits every row through its own controller and returns the outcomes
// in row order. Row failures are reported in the outcomes; the returned error
// is set only when ctx ends the batch early.
func Run(ctx context.Context, rows []Row, opts Options) ([]Outcome, Summary, error) {
	if opts.Client == nil {
		return nil, Summary{}, eris.New("batch: classifier client is nil")
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = controller.DefaultModel
	}
	if opts.Endpoints == nil {
		opts.Endpoints = controller.DefaultEndpoints()
	}

	var limiter *rate.Limiter
	if opts.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), 1)
	}

	outcomes := make([]Outcome, len(rows))
	for i, row := range rows {
		outcomes[i] = Outcome{Row: row, Model: row.Model, State: controller.Idle(), Err: ErrNotRun}
	}
	var done atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, row := range rows {
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gCtx); err != nil {
					return eris.Wrap(err, "batch: rate limit wait")
				}
			} else if err := gCtx.Err(); err != nil {
				return eris.Wrap(err, "batch: cancelled")
			}

			outcomes[i] = runRow(gCtx, row, opts)
			n := done.Add(1)

			if o := outcomes[i]; o.Status() != controller.StatusSucceeded.String() {
				zap.L().Error("batch: row failed",
					zap.Int("line", row.Line),
					zap.String("status", o.Status()),
					zap.String("error", o.Message()),
				)
			} else {
				zap.L().Debug("batch: row done",
					zap.Int("line", row.Line),
					zap.Int64("done", n),
					zap.Int("total", len(rows)),
				)
			}
			return nil // don't abort batch on individual failure
		})
	}

	err := g.Wait()
	summary := summarize(outcomes)

	zap.L().Info("batch: complete",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("invalid", summary.Invalid),
		zap.Int("errored", summary.Errored),
	)
	return outcomes, summary, err
}

func runRow(ctx context.Context, row Row, opts Options) Outcome {
	model := row.Model
	if model == "" {
		model = opts.DefaultModel
	}
	out := Outcome{Row: row, Model: model, State: controller.Idle()}

	ctrl, err := controller.New(opts.Variant, opts.Client,
		controller.WithEndpoints(opts.Endpoints),
		controller.WithModel(model),
		controller.WithRecorder(opts.Recorder),
	)
	if err != nil {
		out.Err = err
		return out
	}
	if err := ctrl.SetAll(row.Values); err != nil {
		out.Err = err
		return out
	}

	out.State, out.Err = ctrl.Submit(ctx)
	return out
}

func summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.Status() {
		case controller.StatusSucceeded.String():
			s.Succeeded++
		case controller.StatusFailed.String():
			s.Failed++
		case StatusInvalid:
			s.Invalid++
		default:
			s.Errored++
		}
	}
	return s
}
