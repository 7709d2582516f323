// pkg/document/integration_test.go
package document_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dattu/paperback/pkg/document"
	"github.com/dattu/paperback/pkg/plan"
	"github.com/dattu/paperback/pkg/qr"
)

// imageSink keeps the rendered symbols in memory so the decode side can
// read them back like scanned pages.
type imageSink struct {
	geom    plan.Geometry
	symbols []image.Image
}

func (s *imageSink) Geometry() plan.Geometry { return s.geom }

func (s *imageSink) Place(page, slot int, kind document.CellKind, sym image.Image) error {
	s.symbols = append(s.symbols, sym)
	return nil
}

func (s *imageSink) Flush() error { return nil }

// TestRoundTripThroughRasters drives the full path: blob to QR rasters
// to recovered blob, with nothing faked below the capability interfaces.
func TestRoundTripThroughRasters(t *testing.T) {
	if testing.Short() {
		t.Skip("raster round trip is slow")
	}

	blob := []byte(`Permission is hereby granted, free of charge, to any person obtaining
a copy of this software and associated documentation files (the
"Software"), to deal in the Software without restriction.
`)
	sink := &imageSink{geom: plan.Geometry{
		LargeCols: 2, LargeRows: 2, SmallCells: 1,
		LargeCapacity: qr.AlnumCapacity(10, qr.ECQuartile),
	}}
	enc := qr.NewEncoder(qr.ECQuartile, 4)

	pl, err := document.Encode(blob, enc, sink, document.EncodeOptions{
		DocumentID: 0x5ca1ab1e0ddba11,
		Descriptor: "paperback test (0000000)",
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, pl.TotalShards(), 2)

	dec := qr.NewDecoder()
	coll := document.NewCollector()
	for _, sym := range sink.symbols {
		for _, text := range dec.DecodeImage(sym) {
			coll.AddText(text)
		}
	}

	rec, err := coll.Result()
	require.NoError(t, err)
	require.Equal(t, blob, rec.Blob)
}
