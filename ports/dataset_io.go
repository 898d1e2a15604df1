package ports

import (
	"tabkit/domain/dataset"
)

// DatasetReader imports tabular files into tables
type DatasetReader interface {
	Read(path string) (name string, table dataset.Table, err error)
}

// DatasetWriter exports a dataset's table to a file
type DatasetWriter interface {
	Write(ds *dataset.Dataset, path string) error
}
