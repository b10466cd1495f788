//go:build !linux

package main

import (
	"fmt"

	"github.com/Dicklesworthstone/procmon/internal/config"
	"github.com/Dicklesworthstone/procmon/internal/source"
	"github.com/Dicklesworthstone/procmon/internal/source/psutil"
)

func openSource(cfg config.Config, ticks int64) (source.Source, error) {
	if cfg.Source == source.KindProcfs {
		return nil, fmt.Errorf("%w: procfs source needs linux", source.ErrUnsupported)
	}
	return psutil.New(ticks), nil
}
