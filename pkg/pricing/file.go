package pricing

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// PriceFile is the on-disk price catalogue. Region tables are merged over Default.
//
//	default:
//	  read_request: 0.00000025
//	regions:
//	  eu-west-1:
//	    read_request: 0.000000283
type PriceFile struct {
	Default models.PriceTable            `yaml:"default"`
	Regions map[string]models.PriceTable `yaml:"regions"`
}

// FileProvider serves prices from a YAML or JSON file
type FileProvider struct {
	path string
	file PriceFile
}

func NewFileProvider(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read prices file %s", path)
	}
	var file PriceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.InvalidInput("prices file %s: %v", path, err)
	}
	return &FileProvider{path: path, file: file}, nil
}

func (f *FileProvider) Name() string {
	return "file"
}

func (f *FileProvider) PriceTable(ctx context.Context, region string) (models.PriceTable, error) {
	table := f.file.Default.Clone()
	if table == nil {
		table = make(models.PriceTable)
	}
	for key, price := range f.file.Regions[region] {
		table[key] = price
	}
	return complete(region, table)
}
