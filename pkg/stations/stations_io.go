package stations

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
)

func isCompressed(filename string) bool {
	return strings.HasSuffix(filename, ".bz2")
}

// LoadFile. read a station FeatureCollection from filename (.json, or .json.bz2 compressed with bzip2).
// every feature is validated; the first invalid one fails the whole load.
func LoadFile(filename string) ([]datastructure.Station, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if isCompressed(filename) {
		bz, err := bzip2.NewReader(f, nil)
		if err != nil {
			return nil, err
		}
		defer bz.Close()
		r = bz
	}

	return Decode(bufio.NewReader(r))
}

func Decode(r io.Reader) ([]datastructure.Station, error) {
	var fc datastructure.StationFeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode station feature collection: %w", err)
	}

	if fc.Type != "" && fc.Type != datastructure.FEATURE_COLLECTION_TYPE {
		return nil, fmt.Errorf("unexpected geojson type %q, want %q", fc.Type, datastructure.FEATURE_COLLECTION_TYPE)
	}

	for i, s := range fc.Features {
		if err := ValidateStation(s); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
	}

	if fc.Features == nil {
		fc.Features = []datastructure.Station{}
	}
	return fc.Features, nil
}

func ValidateStation(s datastructure.Station) error {
	if s.Type != datastructure.FEATURE_TYPE {
		return fmt.Errorf("type %q is not %q", s.Type, datastructure.FEATURE_TYPE)
	}
	if s.Geometry.Type != datastructure.POINT_TYPE {
		return fmt.Errorf("geometry type %q is not %q", s.Geometry.Type, datastructure.POINT_TYPE)
	}
	lon, lat := s.GetLon(), s.GetLat()
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range", lon)
	}
	return nil
}

// WriteFile. write stations as a FeatureCollection, bzip2 compressed when filename ends with .bz2
func WriteFile(filename string, stations []datastructure.Station) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if !isCompressed(filename) {
		w := bufio.NewWriter(f)
		if err := Encode(w, stations); err != nil {
			return err
		}
		return w.Flush()
	}

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(bz)
	if err := Encode(w, stations); err != nil {
		bz.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		bz.Close()
		return err
	}
	return bz.Close()
}

func Encode(w io.Writer, stations []datastructure.Station) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(datastructure.NewStationFeatureCollection(stations))
}
