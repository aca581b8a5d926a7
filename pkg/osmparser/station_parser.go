package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lintang-b-s/Corridorx/pkg"
	"github.com/lintang-b-s/Corridorx/pkg/datastructure"
	"github.com/lintang-b-s/Corridorx/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

type NodeCoord struct {
	lat float64
	lon float64
}

func NewNodeCoord(lat, lon float64) NodeCoord {
	return NodeCoord{lat, lon}
}

type stationWay struct {
	id    int64
	nodes []int64
	tags  osm.Tags
}

// StationParser. extracts service stations (highway=services, highway=rest_area, amenity=fuel) from an osm pbf extract.
// tagged nodes become stations directly; tagged closed/open ways become a station at the centroid of their nodes.
type StationParser struct {
	log         *zap.Logger
	wayNodes    map[int64]struct{}
	nodeCoords  map[int64]NodeCoord
	ways        []stationWay
	stations    []datastructure.Station
	includeFuel bool
}

func NewStationParser(log *zap.Logger, includeFuel bool) *StationParser {
	return &StationParser{
		log:         log,
		wayNodes:    make(map[int64]struct{}),
		nodeCoords:  make(map[int64]NodeCoord),
		ways:        make([]stationWay, 0),
		stations:    make([]datastructure.Station, 0),
		includeFuel: includeFuel,
	}
}

func (p *StationParser) ParseFile(mapFile string) ([]datastructure.Station, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(context.Background(), f)
}

// Parse. two passes over the pbf: ways first (to learn which nodes are needed), then nodes.
func (p *StationParser) Parse(ctx context.Context, r io.ReadSeeker) ([]datastructure.Station, error) {
	scanner := osmpbf.New(ctx, r, 0)
	countWays := 0
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}
		way := o.(*osm.Way)
		if !p.acceptTags(way.Tags) || len(way.Nodes) == 0 {
			continue
		}

		nodes := make([]int64, 0, len(way.Nodes))
		for _, n := range way.Nodes {
			p.wayNodes[int64(n.ID)] = struct{}{}
			nodes = append(nodes, int64(n.ID))
		}
		p.ways = append(p.ways, stationWay{id: int64(way.ID), nodes: nodes, tags: way.Tags})
		countWays++
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("scan openstreetmap ways: %w", err)
	}
	scanner.Close()
	p.log.Sugar().Infof("found %d service station ways", countWays)

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	scanner = osmpbf.New(ctx, r, 0)
	defer scanner.Close()

	countNodes := 0
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeNode {
			continue
		}
		node := o.(*osm.Node)
		if (countNodes+1)%500000 == 0 {
			p.log.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
		}
		countNodes++

		if _, ok := p.wayNodes[int64(node.ID)]; ok {
			p.nodeCoords[int64(node.ID)] = NewNodeCoord(node.Lat, node.Lon)
		}
		if p.acceptTags(node.Tags) {
			p.stations = append(p.stations, stationFromTags(int64(node.ID), node.Lat, node.Lon, node.Tags))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan openstreetmap nodes: %w", err)
	}

	for _, w := range p.ways {
		c, ok := p.centroid(w.nodes)
		if !ok {
			p.log.Warn("skipping station way without node coordinates", zap.Int64("way_id", w.id))
			continue
		}
		p.stations = append(p.stations, stationFromTags(w.id, c.Lat, c.Lon, w.tags))
	}

	p.log.Info("service stations extracted", zap.Int("stations", len(p.stations)))
	return p.stations, nil
}

func (p *StationParser) acceptTags(tags osm.Tags) bool {
	kind := pkg.GetStationKind(tags.Find("highway"), tags.Find("amenity"))
	switch kind {
	case pkg.MOTORWAY_SERVICES, pkg.REST_AREA:
		return true
	case pkg.FUEL:
		return p.includeFuel
	default:
		return false
	}
}

// centroid. mean of the node positions, closing node counted once
func (p *StationParser) centroid(nodes []int64) (geo.Coordinate, bool) {
	if len(nodes) > 1 && nodes[0] == nodes[len(nodes)-1] {
		nodes = nodes[:len(nodes)-1]
	}
	sumLat, sumLon := 0.0, 0.0
	n := 0
	for _, id := range nodes {
		c, ok := p.nodeCoords[id]
		if !ok {
			continue
		}
		sumLat += c.lat
		sumLon += c.lon
		n++
	}
	if n == 0 {
		return geo.Coordinate{}, false
	}
	return geo.NewCoordinate(sumLat/float64(n), sumLon/float64(n)), true
}

func stationFromTags(osmID int64, lat, lon float64, tags osm.Tags) datastructure.Station {
	kind := pkg.GetStationKind(tags.Find("highway"), tags.Find("amenity"))

	name := tags.Find("name")
	if name == "" {
		name = tags.Find("operator")
	}
	if name == "" {
		name = tags.Find("brand")
	}

	url := tags.Find("website")
	if url == "" {
		url = tags.Find("contact:website")
	}
	if url == "" {
		url = tags.Find("url")
	}

	return datastructure.NewStation(lat, lon, datastructure.StationProperties{
		Name:     strings.TrimSpace(name),
		Postcode: strings.TrimSpace(tags.Find("addr:postcode")),
		URL:      strings.TrimSpace(url),
		OsmID:    osmID,
		Kind:     kind.String(),
	})
}
