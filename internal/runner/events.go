package runner

import (
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/keywordlab/harvest/pkg/models"
)

// ProgressSink renders run progress on stderr as a progress bar and
// forwards adapter messages to the log.
type ProgressSink struct {
	bar *progressbar.ProgressBar
}

func NewProgressSink() *ProgressSink {
	return &ProgressSink{}
}

func (p *ProgressSink) Progress(current, total int) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("tasks"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(current)
}

func (p *ProgressSink) Log(message string) {
	log.Info().Msg(message)
}

func (p *ProgressSink) TaskCompleted(task models.Task, ok bool) {
	if p.bar != nil && !ok {
		p.bar.Describe("tasks (" + task.Slug + " had failures)")
	}
}
