//go:build linux

package main

import (
	"github.com/Dicklesworthstone/procmon/internal/config"
	"github.com/Dicklesworthstone/procmon/internal/source"
	"github.com/Dicklesworthstone/procmon/internal/source/procfs"
	"github.com/Dicklesworthstone/procmon/internal/source/psutil"
)

func openSource(cfg config.Config, ticks int64) (source.Source, error) {
	if cfg.Source == source.KindPsutil {
		return psutil.New(ticks), nil
	}
	return procfs.New(procfs.Options{
		Root:      cfg.ProcRoot,
		OSRelease: cfg.OSRelease,
		Ticks:     ticks,
	})
}
