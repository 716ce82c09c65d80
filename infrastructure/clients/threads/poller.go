package threads

import (
	"context"
	"fmt"
	"time"

	"content-studio/domain/model"
)

// ContainerState is the lifecycle of an asynchronous media container.
type ContainerState string

const (
	StateCreated    ContainerState = "CREATED"
	StateProcessing ContainerState = "PROCESSING"
	StateFinished   ContainerState = "FINISHED"
	StateErrored    ContainerState = "ERRORED"
	StateTimedOut   ContainerState = "TIMED_OUT"
)

// PollBudget bounds a polling loop: wait InitialDelay once, then check at
// most MaxAttempts times, sleeping Interval between checks.
type PollBudget struct {
	InitialDelay time.Duration
	Interval     time.Duration
	MaxAttempts  int
}

// Budgets maps each media kind to its polling budget. Video containers get
// the largest budget since server-side transcoding dominates their latency.
type Budgets struct {
	Text  PollBudget
	Image PollBudget
	Video PollBudget
}

func (b Budgets) For(kind model.MediaKind) PollBudget {
	switch kind {
	case model.MediaKindImage:
		return b.Image
	case model.MediaKindVideo:
		return b.Video
	default:
		return b.Text
	}
}

// DefaultBudgets mirrors the observed processing profile of the platform.
func DefaultBudgets() Budgets {
	return Budgets{
		Text:  PollBudget{InitialDelay: time.Second, Interval: 1500 * time.Millisecond, MaxAttempts: 10},
		Image: PollBudget{InitialDelay: 2 * time.Second, Interval: 1500 * time.Millisecond, MaxAttempts: 20},
		Video: PollBudget{InitialDelay: 2 * time.Second, Interval: 1500 * time.Millisecond, MaxAttempts: 30},
	}
}

// StatusFunc checks one container and reports its state. For StateErrored the
// second value carries the platform's error message.
type StatusFunc func(ctx context.Context) (ContainerState, string, error)

// Poller drives a container to a terminal state within a bounded budget.
// The sleep and now functions are injectable so tests run without waiting.
type Poller struct {
	Budgets Budgets

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewPoller(budgets Budgets) *Poller {
	return &Poller{
		Budgets: budgets,
		sleep:   sleepCtx,
		now:     time.Now,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ErrContainerTimedOut is returned when the budget is exhausted before the
// container reaches a terminal state.
type ErrContainerTimedOut struct {
	ContainerID string
	Elapsed     time.Duration
	Attempts    int
}

func (e *ErrContainerTimedOut) Error() string {
	return fmt.Sprintf("container %s still processing after %s (%d checks)", e.ContainerID, e.Elapsed.Round(time.Millisecond), e.Attempts)
}

// ErrContainerErrored is returned when the platform reports the container
// failed processing. Polling stops immediately.
type ErrContainerErrored struct {
	ContainerID string
	Message     string
}

func (e *ErrContainerErrored) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("container %s failed processing", e.ContainerID)
	}
	return fmt.Sprintf("container %s failed processing: %s", e.ContainerID, e.Message)
}

// WaitFinished polls until the container is FINISHED, or fails with
// ErrContainerErrored, ErrContainerTimedOut, or the context's error.
func (p *Poller) WaitFinished(ctx context.Context, containerID string, kind model.MediaKind, status StatusFunc) error {
	budget := p.Budgets.For(kind)
	start := p.now()

	if err := p.sleep(ctx, budget.InitialDelay); err != nil {
		return err
	}
	for attempt := 1; attempt <= budget.MaxAttempts; attempt++ {
		state, message, err := status(ctx)
		if err != nil {
			return err
		}
		switch state {
		case StateFinished:
			return nil
		case StateErrored:
			return &ErrContainerErrored{ContainerID: containerID, Message: message}
		}
		if attempt == budget.MaxAttempts {
			break
		}
		if err := p.sleep(ctx, budget.Interval); err != nil {
			return err
		}
	}
	return &ErrContainerTimedOut{
		ContainerID: containerID,
		Elapsed:     p.now().Sub(start),
		Attempts:    budget.MaxAttempts,
	}
}
