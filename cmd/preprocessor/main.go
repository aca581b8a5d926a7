package main

import (
	"flag"

	"github.com/lintang-b-s/Corridorx/pkg/logger"
	"github.com/lintang-b-s/Corridorx/pkg/osmparser"
	"github.com/lintang-b-s/Corridorx/pkg/stations"
	"go.uber.org/zap"
)

var (
	inputFile   = flag.String("input", "./data/great-britain.osm.pbf", "openstreetmap pbf extract")
	outputFile  = flag.String("output", "./data/service-stations.json", "station dataset, bzip2 compressed when it ends with .bz2")
	includeFuel = flag.Bool("include_fuel", true, "also extract amenity=fuel")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	parser := osmparser.NewStationParser(logger, *includeFuel)
	extracted, err := parser.ParseFile(*inputFile)
	if err != nil {
		logger.Fatal("failed to parse openstreetmap file", zap.String("input", *inputFile), zap.Error(err))
	}

	for i, s := range extracted {
		if err := stations.ValidateStation(s); err != nil {
			logger.Fatal("extracted station is invalid", zap.Int("index", i), zap.Error(err))
		}
	}

	if err := stations.WriteFile(*outputFile, extracted); err != nil {
		logger.Fatal("failed to write station dataset", zap.String("output", *outputFile), zap.Error(err))
	}

	logger.Sugar().Infof("Preprocessing completed successfully. %d stations written to %s", len(extracted), *outputFile)
}
