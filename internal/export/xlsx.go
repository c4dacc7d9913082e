package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/layer"
)

var xlsxHeader = []string{"u", "v", "key", "osmid", "highway", "name", "length", "centrality", "weight"}

// WriteXLSX writes the attribute table of l, without geometry, to a single
// "centrality" sheet.
func WriteXLSX(path string, l *layer.Layer) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(LayerName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range xlsxHeader {
		header.AddCell().SetString(h)
	}

	for _, feat := range l.Features {
		row := sheet.AddRow()
		row.AddCell().SetInt64(feat.U)
		row.AddCell().SetInt64(feat.V)
		row.AddCell().SetInt(feat.Key)
		row.AddCell().SetString(feat.OSMID)
		row.AddCell().SetString(feat.Highway)
		row.AddCell().SetString(feat.Name)
		row.AddCell().SetFloat(feat.Length)
		row.AddCell().SetFloat(feat.Centrality)
		row.AddCell().SetFloat(feat.Weight)
	}

	return eris.Wrapf(f.Save(path), "xlsx: save %s", path)
}
