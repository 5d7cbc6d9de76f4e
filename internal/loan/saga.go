package loan

import (
	"context"
	"errors"
)

type recordDeleter interface {
	Delete(ctx context.Context, id string) error
}

type copyReleaser interface {
	ReleaseCopy(ctx context.Context, copyID string) error
}

// compensation undoes the side effects of an issue attempt that lost the
// quota check. Fields are filled in as the attempt progresses.
type compensation struct {
	records  recordDeleter
	copies   copyReleaser
	copyID   string
	recordID string
}

// run deletes the inserted record, if any, and puts the copy back. Both steps
// are attempted even if the first fails.
func (c *compensation) run(ctx context.Context) error {
	var errs []error
	if c.recordID != "" {
		if err := c.records.Delete(ctx, c.recordID); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if c.copyID != "" {
		if err := c.copies.ReleaseCopy(ctx, c.copyID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
