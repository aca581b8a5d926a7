package stations

import (
	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
	"github.com/lintang-b-s/Corridorx/pkg/spatialindex"
	"go.uber.org/zap"
)

// Store. station set loaded once at startup. read-only afterwards, safe for concurrent use.
type Store struct {
	stations []datastructure.Station
	index    *spatialindex.StationIndex
}

func NewStore(stations []datastructure.Station, log *zap.Logger) *Store {
	if stations == nil {
		stations = []datastructure.Station{}
	}
	index := spatialindex.NewStationIndex()
	index.Build(stations, log)
	return &Store{
		stations: stations,
		index:    index,
	}
}

func NewStoreFromFile(filename string, log *zap.Logger) (*Store, error) {
	stations, err := LoadFile(filename)
	if err != nil {
		return nil, err
	}
	log.Info("service stations loaded", zap.String("file", filename), zap.Int("stations", len(stations)))
	return NewStore(stations, log), nil
}

// All. callers must not modify the returned slice
func (s *Store) All() []datastructure.Station {
	return s.stations
}

func (s *Store) Len() int {
	return len(s.stations)
}

// Index. r-tree whose entries are positions in All()
func (s *Store) Index() *spatialindex.StationIndex {
	return s.index
}
