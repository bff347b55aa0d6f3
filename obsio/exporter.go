package obsio

import (
	"context"
	"path/filepath"
	"time"

	"github.com/signalsfoundry/gnssvod/model"
)

// Reader adapts the package functions to the engine's TableReader contract.
type Reader struct{}

func (Reader) ReadTable(path string) (*model.Table, error) { return ReadTable(path) }

func (Reader) Extent(path string) (min, max time.Time, err error) { return Extent(path) }

// DirExporter writes each finished artifact as <name>.csv under Dir.
type DirExporter struct {
	Dir string
}

func (e DirExporter) Export(ctx context.Context, name string, t *model.Table) error {
	return WriteTable(filepath.Join(e.Dir, name+".csv"), t)
}
