// Package scheduler drives a job through an ordered list of stages on a single
// control flow, mirroring each stage on the output manager.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/godotfetch/internal/output"
	"github.com/tanq16/godotfetch/internal/utils"
)

// ErrSkipped is returned (possibly wrapped) by a stage that found its work
// already done. The run continues with the next stage.
var ErrSkipped = errors.New("stage skipped")

type Stage struct {
	Name string
	// Run returns the completion message shown for the stage.
	Run func(ctx context.Context, job *utils.Job, stageID int) (string, error)
}

type Scheduler struct {
	out *output.Manager
}

func New(out *output.Manager) *Scheduler {
	return &Scheduler{out: out}
}

func (s *Scheduler) Output() *output.Manager { return s.out }

// Run executes stages in order and stops at the first failing one; stages after
// it stay pending. The display is started and stopped around the run.
func (s *Scheduler) Run(ctx context.Context, job *utils.Job, stages []Stage) error {
	ids := make([]int, len(stages))
	for i, stage := range stages {
		ids[i] = s.out.RegisterStage(stage.Name)
	}
	s.out.StartDisplay()
	defer s.out.StopDisplay()

	for i, stage := range stages {
		if err := ctx.Err(); err != nil {
			s.out.ReportError(ids[i], err)
			return err
		}
		logger := log.With().Str("op", "scheduler").Str("job", job.ID).Str("stage", stage.Name).Logger()
		logger.Debug().Msg("stage started")
		s.out.Start(ids[i], fmt.Sprintf("Running %s", stage.Name))

		start := time.Now()
		message, err := stage.Run(ctx, job, ids[i])
		switch {
		case errors.Is(err, ErrSkipped):
			logger.Info().Dur("elapsed", time.Since(start)).Msg("stage skipped")
			s.out.Skip(ids[i], message)
		case err != nil:
			logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("stage failed")
			s.out.SetMessage(ids[i], fmt.Sprintf("%s failed", stage.Name))
			s.out.ReportError(ids[i], err)
			return err
		default:
			logger.Info().Dur("elapsed", time.Since(start)).Msg("stage complete")
			s.out.Complete(ids[i], message)
		}
	}
	return nil
}
