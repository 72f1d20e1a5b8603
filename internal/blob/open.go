// Package blob selects a blob driver for snapshot archives.
package blob

import (
	"context"
	"fmt"

	"propdesk/internal/blob/core"
	"propdesk/internal/infra/blob/fs"
	"propdesk/internal/infra/blob/memory"
	"propdesk/internal/infra/blob/s3"
)

// Options configures Open. Only the fields of the selected driver are read.
type Options struct {
	Driver core.Driver
	FSRoot string
	S3     s3.Config
}

// Open returns the store named by opts.Driver; an empty driver selects fs.
func Open(ctx context.Context, opts Options) (core.Store, error) {
	switch opts.Driver {
	case "", core.DriverFilesystem:
		return fs.New(opts.FSRoot)
	case core.DriverS3:
		return s3.New(ctx, opts.S3)
	case core.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", opts.Driver)
	}
}
