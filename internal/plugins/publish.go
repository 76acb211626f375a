package plugins

import (
	"context"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/store"
)

// PublishOptions enables inclusion of files the visibility filter
// would otherwise drop.
type PublishOptions struct {
	// Draft includes drafts in any mode. Development mode includes
	// them regardless.
	Draft bool `json:"draft"`
	// Private includes private files, which are otherwise excluded in
	// every mode.
	Private bool `json:"private"`
	// Future includes files dated after the build time. Development
	// mode includes them regardless.
	Future bool `json:"future"`
}

type publishStage struct {
	opts PublishOptions
}

// Publish returns the visibility-filter stage. It deletes drafts,
// private files, and future-dated files according to the mode and the
// configured overrides, logging a count per reason.
func Publish(opts PublishOptions) pipeline.Stage {
	return &publishStage{opts: opts}
}

func (s *publishStage) Name() string { return "publish" }

func (s *publishStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	dev := pc.Development()
	keepDrafts := s.opts.Draft || dev
	keepFuture := s.opts.Future || dev

	var drafts, private, future int
	for _, key := range files.Keys() {
		f := files.Get(key)
		switch {
		case !keepDrafts && (f.Bool("draft") || f.String("publish") == "draft"):
			drafts++
			files.Delete(key)
		case !s.opts.Private && (f.Bool("private") || f.String("publish") == "private"):
			private++
			files.Delete(key)
		case !keepFuture && isFuture(f, pc):
			future++
			files.Delete(key)
		}
	}

	if drafts+private+future > 0 {
		pc.Log.Infof("publish: removed %d draft, %d private, %d future-dated", drafts, private, future)
	}
	return nil
}

func isFuture(f *store.File, pc *pipeline.Context) bool {
	t := f.Time("date")
	return !t.IsZero() && t.After(pc.Now)
}
